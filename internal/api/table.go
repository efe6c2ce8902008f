package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/telemetry"
)

const streamHeartbeat = 25 * time.Second

// handleTable handles GET /v1/table: snapshot metadata with ETag support.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", snap.ETag)
	writeJSON(w, http.StatusOK, snap)
}

// handleGenes handles GET /v1/genes.
func (s *Server) handleGenes(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	genes := snap.Table().Genes()
	if genes == nil {
		genes = []string{}
	}
	w.Header().Set("ETag", snap.ETag)
	writeJSON(w, http.StatusOK, GenesResponse{Genes: genes, ETag: snap.ETag})
}

// handleGeneRules handles GET /v1/genes/{gene}/rules. Disabled rules are
// listed too, in table order.
func (s *Server) handleGeneRules(w http.ResponseWriter, r *http.Request) {
	gene := chi.URLParam(r, "gene")
	rows := snapshot.Load().Table().Rules(gene)
	if rows == nil {
		NotFoundError(w, r, ErrCodeNotFound, fmt.Sprintf("gene %s has no rules", gene))
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{Gene: gene, Rules: rows})
}

// handleReload handles POST /v1/table/reload.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	before := snapshot.Load().ETag

	if err := s.RebuildSnapshot(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("table reload failed")
		DomainError(w, r, err)
		return
	}

	snap := snapshot.Load()
	writeJSON(w, http.StatusOK, ReloadResponse{
		OK:      true,
		ETag:    snap.ETag,
		Version: snap.Version,
		Rules:   snap.Rules,
		Changed: snap.ETag != before,
	})
}

// handleStream handles GET /v1/table/stream: a server-sent event stream that
// opens with an "init" event and emits "update" whenever the table changes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	ch, unsub := snapshot.Subscribe()
	defer unsub()
	telemetry.SSEClients.Inc()
	defer telemetry.SSEClients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snap := snapshot.Load()
	if err := writeEvent(w, "init", snapshot.Event{ETag: snap.ETag, Version: snap.Version, Rules: snap.Rules}); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, "update", ev); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, ev snapshot.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
