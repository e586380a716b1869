package internal

import (
	"dm-lab/infrastructure/storage"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	defaultInspectPrefix = "msg:"
	maxInspectRows       = 500
)

type InspectRow struct {
	Key    string
	Kind   string
	At     string
	Entity string
	Detail string
}

type StatsProvider func() map[string]any

type PageData struct {
	Prefix    string
	Items     []InspectRow
	Stats     map[string]any
	Truncated bool
}

// StartDebugServer serves the inspection page on its own port. Only
// started at debug log level; the returned server is closed on shutdown.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, endpoint string, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(endpoint, InspectHandler(db, statsProvider))
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
	return srv
}

// InspectHandler renders every record under ?prefix= decoded by storage.Describe.
func InspectHandler(db *badger.DB, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := lo.CoalesceOrEmpty(r.URL.Query().Get("prefix"), defaultInspectPrefix)
		data := PageData{Prefix: prefix, Stats: map[string]any{}}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
				if len(data.Items) == maxInspectRows {
					data.Truncated = true
					return nil
				}
				item := it.Item()
				key := string(item.KeyCopy(nil))
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, toInspectRow(key, storage.Describe(key, val)))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

func toInspectRow(key string, view storage.RecordView) InspectRow {
	row := InspectRow{Key: key, Kind: view.Kind, At: "--:--:--", Entity: view.Entity, Detail: view.Detail}
	if !view.At.IsZero() {
		row.At = view.At.UTC().Format(time.DateTime)
	}
	return row
}
