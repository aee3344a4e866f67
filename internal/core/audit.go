package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/resale/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionInventoryCreate AuditAction = "inventory_create"
	ActionInventoryUpdate AuditAction = "inventory_update"
	ActionInventoryDelete AuditAction = "inventory_delete"
	ActionOrderCreate     AuditAction = "order_create"
	ActionOrderEdit       AuditAction = "order_edit"
	ActionOrderArchive    AuditAction = "order_archive"
	ActionOrderRecover    AuditAction = "order_recover"
	ActionOrderPurge      AuditAction = "order_purge"
	ActionArchivePurge    AuditAction = "archive_purge"
	ActionLedgerCreate    AuditAction = "ledger_create"
	ActionLedgerUpdate    AuditAction = "ledger_update"
	ActionLedgerDelete    AuditAction = "ledger_delete"
	ActionImageBatch      AuditAction = "image_batch"
	ActionRetentionPurge  AuditAction = "retention_purge"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// DefaultAuditLimit caps GetAuditLog when no limit is given.
const DefaultAuditLimit = 100

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	ID         string        `json:"id"`
	CreatedAt  string        `json:"created_at"`
	Action     AuditAction   `json:"action"`
	Severity   AuditSeverity `json:"severity"`
	Collection string        `json:"collection"`
	RecordKey  string        `json:"record_key,omitempty"`
	Details    string        `json:"details,omitempty"`
	IPAddress  string        `json:"ip_address,omitempty"`
	UserAgent  string        `json:"user_agent,omitempty"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action     AuditAction
	Collection string
	RecordKey  string
	Details    map[string]any
}

// AuditLogFilter narrows GetAuditLog results. Zero values match everything.
type AuditLogFilter struct {
	Collection string
	Action     AuditAction
	Limit      int
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionOrderPurge, ActionArchivePurge, ActionRetentionPurge:
		return SeverityCritical
	case ActionInventoryDelete, ActionOrderArchive, ActionLedgerDelete:
		return SeverityHigh
	case ActionImageBatch:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit appends an entry to the audit log.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	meta := RequestMetaFromContext(ctx)
	entry := AuditEntry{
		ID:         uuid.NewString(),
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
		Action:     params.Action,
		Severity:   determineSeverity(params.Action),
		Collection: params.Collection,
		RecordKey:  params.RecordKey,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if params.Details != nil {
		if b, err := json.Marshal(params.Details); err == nil {
			entry.Details = string(b)
		}
	}

	release := s.locks.acquire(CollectionAuditLog)
	defer release()

	recs, err := s.readCollection(ctx, CollectionAuditLog)
	if err != nil {
		return nil, err
	}
	recs = append(recs, toRecord(entry))
	if err := s.writeCollection(ctx, CollectionAuditLog, recs); err != nil {
		return nil, err
	}
	return &entry, nil
}

// recordAudit logs an audit entry after a mutation has been persisted.
// The mutation already happened, so failures are logged and swallowed.
func (s *Service) recordAudit(ctx context.Context, params AuditLogParams) {
	if _, err := s.LogAudit(context.WithoutCancel(ctx), params); err != nil {
		logging.FromContext(ctx).Warn("audit log write failed",
			"action", params.Action,
			"collection", params.Collection,
			"error", err,
		)
	}
}

// GetAuditLog returns matching entries, newest first.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}

	recs, err := s.readCollection(ctx, CollectionAuditLog)
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, min(len(recs), filter.Limit))
	for i := len(recs) - 1; i >= 0 && len(entries) < filter.Limit; i-- {
		entry := fromRecord[AuditEntry](recs[i])
		if filter.Collection != "" && entry.Collection != filter.Collection {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// purgeAuditLogBefore drops entries created before cutoff. Entries with an
// unreadable timestamp are kept.
func (s *Service) purgeAuditLogBefore(ctx context.Context, cutoff time.Time) (int, error) {
	release := s.locks.acquire(CollectionAuditLog)
	defer release()

	recs, err := s.readCollection(ctx, CollectionAuditLog)
	if err != nil {
		return 0, err
	}
	kept := recs[:0]
	for _, rec := range recs {
		created, err := time.Parse(time.RFC3339, rec["created_at"])
		if err == nil && created.Before(cutoff) {
			continue
		}
		kept = append(kept, rec)
	}
	purged := len(recs) - len(kept)
	if purged == 0 {
		return 0, nil
	}
	return purged, s.writeCollection(ctx, CollectionAuditLog, kept)
}
