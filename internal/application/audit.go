package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// AuditEvent is one auth-flow outcome worth keeping.
type AuditEvent struct {
	UserID  string
	Email   string
	Action  string // e.g. "admin_login", "public_login", "signup", "verify_otp"
	Outcome string // "ok" or the error kind
	Detail  map[string]any
}

// AuditRecorder persists auth events to Postgres and mirrors them to
// Elasticsearch on a best-effort basis. Recording never fails the enclosing
// use-case.
type AuditRecorder struct {
	DB     *pgxpool.Pool
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewAuditRecorder(db *pgxpool.Pool, es *elasticsearch.Client, index string, logger *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{DB: db, ES: es, Index: index, Logger: logger}
}

// Record writes the event. Safe to call on a nil recorder.
func (a *AuditRecorder) Record(ctx context.Context, ev AuditEvent) {
	if a == nil {
		return
	}
	id := uuid.NewString()
	now := time.Now().UTC()

	if a.DB != nil {
		detail, _ := json.Marshal(ev.Detail)
		_, err := a.DB.Exec(ctx, `
			INSERT INTO auth_audit (id, user_id, email, action, outcome, detail, created_at)
			VALUES ($1, NULLIF($2::text, '')::uuid, NULLIF($3, ''), $4, $5, $6, $7)
		`, id, ev.UserID, ev.Email, ev.Action, ev.Outcome, detail, now)
		if err != nil && a.Logger != nil {
			a.Logger.WithError(err).WithField("action", ev.Action).Warn("audit insert failed")
		}
	}

	a.index(ctx, id, ev, now)
}

func (a *AuditRecorder) index(ctx context.Context, id string, ev AuditEvent, at time.Time) {
	if a.ES == nil || a.Index == "" {
		return
	}
	doc := map[string]any{
		"user_id": ev.UserID,
		"email":   ev.Email,
		"action":  ev.Action,
		"outcome": ev.Outcome,
		"detail":  ev.Detail,
		"at":      at.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: a.Index, DocumentID: id, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, a.ES)
	if err != nil {
		if a.Logger != nil {
			a.Logger.WithError(err).WithField("action", ev.Action).Warn("audit es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && a.Logger != nil {
		a.Logger.WithField("status", res.Status()).WithField("action", ev.Action).Warn("audit es index response error")
	}
}
