package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/catalog"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/connector"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/lineage"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/presenter"
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
)

type contextKey struct{}

// withSession opens a session for the request and closes it afterwards
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encryptor, err := s.Encryptor()
		if err != nil {
			s.Logger.Errorf("Error loading credential key: %v", err)
			writeError(w, http.StatusInternalServerError, "could not load the credential key")
			return
		}
		session, err := connector.NewSessionWithEncryptor(s.Config, encryptor, s.Logger)
		if err != nil {
			s.Logger.Errorf("Error opening session: %v", err)
			writeError(w, http.StatusInternalServerError, "could not open the credential store")
			return
		}
		defer session.Close()

		ctx := context.WithValue(r.Context(), contextKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *connector.Session {
	session, _ := ctx.Value(contextKey{}).(*connector.Session)
	return session
}

// SourceInfo describes a supported backend
type SourceInfo struct {
	Key  models.SourceType `json:"key"`
	Name string            `json:"name"`
}

// Edge joins two node keys, dependency first
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LineageResponse is the payload of the lineage endpoint
type LineageResponse struct {
	Root   string            `json:"root"`
	Layout *presenter.Layout `json:"layout"`
	Edges  []Edge            `json:"edges"`
	Report *presenter.Report `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	out := make([]SourceInfo, 0, len(models.SourceTypes))
	for _, st := range models.SourceTypes {
		out = append(out, SourceInfo{Key: st, Name: st.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	source, ok := models.ParseSourceType(chi.URLParam(r, "source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source: "+chi.URLParam(r, "source"))
		return
	}

	names := sessionFrom(r.Context()).SavedConnections(source)
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source":      source,
		"connections": names,
	})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	source, ok := models.ParseSourceType(chi.URLParam(r, "source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown source: "+chi.URLParam(r, "source"))
		return
	}
	conn := chi.URLParam(r, "conn")
	view := r.URL.Query().Get("view")
	if view == "" {
		writeError(w, http.StatusBadRequest, "missing view parameter")
		return
	}

	session := sessionFrom(r.Context())
	cat, err := s.OpenCatalog(r.Context(), session, source, conn)
	if err != nil {
		s.Logger.Errorf("Error opening catalog %s/%s: %v", source, conn, err)
		writeError(w, catalogErrorStatus(err), err.Error())
		return
	}

	builder := lineage.NewBuilder(cat, s.Config.FallbackSchema, s.Logger)
	builder.MaxDepth = s.Config.MaxDepth
	result, err := builder.Build(r.Context(), models.ParseObjectName(view))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "dot" {
		var buf bytes.Buffer
		if err := presenter.WriteDOT(&buf, result.Graph); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write(buf.Bytes())
		return
	}

	resp := LineageResponse{
		Root:   result.Root.String(),
		Layout: presenter.ComputeLayout(result.Graph),
		Edges:  []Edge{},
		Report: presenter.BuildReport(result),
	}
	for _, e := range result.Graph.Edges {
		resp.Edges = append(resp.Edges, Edge{From: result.Graph.Nodes[e.From].Key, To: result.Graph.Nodes[e.To].Key})
	}
	writeJSON(w, http.StatusOK, resp)
}

func catalogErrorStatus(err error) int {
	switch {
	case errors.Is(err, connector.ErrConnectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrUnsupportedSource):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
