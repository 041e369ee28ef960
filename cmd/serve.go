package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the leads API and trigger runs over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
			filter := leadFilterFromQuery(req)
			leads, err := env.Store.ListLeads(req.Context(), filter)
			if err != nil {
				zap.L().Error("serve: list leads", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list leads failed"})
				return
			}
			writeJSON(w, http.StatusOK, leads)
		})

		r.Get("/leads/{domain}", func(w http.ResponseWriter, req *http.Request) {
			domain := chi.URLParam(req, "domain")
			lead, err := env.Store.GetLead(req.Context(), domain)
			if err != nil {
				zap.L().Error("serve: get lead", zap.String("domain", domain), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get lead failed"})
				return
			}
			if lead == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
				return
			}
			writeJSON(w, http.StatusOK, lead)
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := env.Store.ListRuns(req.Context(), store.RunFilter{
				Status: model.RunStatus(req.URL.Query().Get("status")),
			})
			if err != nil {
				zap.L().Error("serve: list runs", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := env.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
			collectors := buildCollectors()
			if len(collectors) == 0 {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no collectors enabled"})
				return
			}

			// Collection and pipeline outlive the request.
			go func() {
				records, err := collect.All(ctx, collectors)
				if err != nil {
					zap.L().Error("serve: collect failed", zap.Error(err))
					return
				}
				run, _, err := env.Pipeline.Run(ctx, records)
				if err != nil {
					zap.L().Error("serve: run failed", zap.Error(err))
					return
				}
				zap.L().Info("serve: run complete",
					zap.String("run_id", run.ID),
					zap.Int("leads", run.Stats.Leads),
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func leadFilterFromQuery(req *http.Request) store.LeadFilter {
	q := req.URL.Query()
	filter := store.LeadFilter{
		BusinessModel: model.BusinessModel(q.Get("model")),
		Source:        q.Get("source"),
	}
	if v, err := strconv.Atoi(q.Get("min_score")); err == nil {
		filter.MinScore = v
	}
	if v, err := strconv.ParseBool(q.Get("contact_found")); err == nil {
		filter.ContactFound = &v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	return filter
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
