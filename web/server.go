// Package web serves the catalog and a per-visitor cart over HTTP.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"kastelo.dev/cart"
	"kastelo.dev/cart/excel"
)

const sessionCookie = "session"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Server struct {
	catalog  *cart.Catalog
	imageDir string
	exporter *excel.Exporter
	logger   *slog.Logger

	mut      sync.Mutex
	sessions map[string]*session
}

// session serialises requests from one visitor; the cart itself is not safe
// for concurrent use.
type session struct {
	mut  sync.Mutex
	cart *cart.Session
}

func NewServer(catalog *cart.Catalog, imageDir string, exporter *excel.Exporter, logger *slog.Logger) *Server {
	if exporter == nil {
		exporter = &excel.Exporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:  catalog,
		imageDir: imageDir,
		exporter: exporter,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/products", s.listProducts).Methods("GET")
	r.HandleFunc("/products/{serial}", s.showProduct).Methods("GET")
	r.HandleFunc("/products/{serial}/image", s.productImage).Methods("GET")
	r.HandleFunc("/cart", s.showCart).Methods("GET")
	r.HandleFunc("/cart/items", s.addItem).Methods("POST")
	r.HandleFunc("/cart/export", s.exportCart).Methods("GET")
	return r
}

// session returns the visitor's session. Without a known session cookie it
// starts a new session when create is set and returns nil otherwise.
func (s *Server) session(w http.ResponseWriter, r *http.Request, create bool) *session {
	s.mut.Lock()
	defer s.mut.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			return sess
		}
	}
	if !create {
		return nil
	}

	id := uuid.NewString()
	sess := &session{cart: cart.NewSession(s.catalog, s.imageDir)}
	s.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("Started session", "session", id)
	return sess
}

// items returns a snapshot of the visitor's cart, empty when there is no
// session.
func (s *Server) items(w http.ResponseWriter, r *http.Request) []cart.LineItem {
	sess := s.session(w, r, false)
	if sess == nil {
		return nil
	}
	sess.mut.Lock()
	defer sess.mut.Unlock()
	return sess.cart.Items()
}

type productJSON struct {
	Serial    string `json:"serial"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	UnitPrice string `json:"unit_price"`
	HasImage  bool   `json:"has_image"`
}

type lineItemJSON struct {
	Serial    string `json:"serial"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	HasImage  bool   `json:"has_image"`
}

type cartJSON struct {
	Items      []lineItemJSON `json:"items"`
	Total      string         `json:"total"`
	TotalExact string         `json:"total_exact"`
}

type addItemRequest struct {
	Serial   string `json:"serial"`
	Quantity int    `json:"quantity"`
}

func toLineItemJSON(item cart.LineItem) lineItemJSON {
	return lineItemJSON{
		Serial:    item.Serial,
		Type:      item.ProductType,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.String(),
		LineTotal: item.LineTotal.String(),
		HasImage:  item.ImagePath != "",
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Serials())
}

func (s *Server) showProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Lookup(mux.Vars(r)["serial"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, productJSON{
		Serial:    p.Serial,
		Category:  p.Category,
		Type:      p.Type,
		UnitPrice: p.UnitPrice.String(),
		HasImage:  cart.ResolveImage(s.imageDir, p.Serial) != "",
	})
}

func (s *Server) productImage(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Lookup(mux.Vars(r)["serial"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	path := cart.ResolveImage(s.imageDir, p.Serial)
	if path == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("no image for %q", p.Serial))
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) showCart(w http.ResponseWriter, r *http.Request) {
	items := s.items(w, r)

	res := cartJSON{Items: make([]lineItemJSON, 0, len(items))}
	for _, item := range items {
		res.Items = append(res.Items, toLineItemJSON(item))
	}
	total := cart.Total(items)
	res.Total = total.StringFixed(2)
	res.TotalExact = total.String()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Rejected items do not start a session.
	var item cart.LineItem
	_, err := s.catalog.Lookup(req.Serial)
	if err == nil && req.Quantity < 1 {
		err = cart.ErrInvalidQuantity
	}
	if err == nil {
		sess := s.session(w, r, true)
		sess.mut.Lock()
		item, err = sess.cart.Add(req.Serial, req.Quantity)
		sess.mut.Unlock()
	}

	var miss *cart.LookupMissError
	switch {
	case errors.As(err, &miss):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineItemJSON(item))
}

func (s *Server) exportCart(w http.ResponseWriter, r *http.Request) {
	items := s.items(w, r)

	dir, err := os.MkdirTemp("", "sepet-export-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(dir)

	res, err := s.exporter.Export(items, filepath.Join(dir, excel.DefaultFileName))
	if err != nil {
		s.logger.Error("Error exporting cart", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	fd, err := os.Open(res.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer fd.Close()
	info, err := fd.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", excel.DefaultFileName))
	w.Header().Set("Content-Length", fmt.Sprint(info.Size()))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, fd); err != nil {
		s.logger.Warn("Error sending export", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
