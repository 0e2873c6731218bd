package docstore

import (
	"context"
	"fmt"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

type updateOp struct {
	key string
	cmd domain.UpdateCommand
}

// bulkPlan is the classified form of a batch patch: per-key update commands
// in batch order, new entities to insert, keys to delete. Within one batch a
// key appears in exactly one group.
type bulkPlan struct {
	updates []updateOp
	inserts []domain.Document
	deletes []string
}

// classify partitions batch entries in their defined order. Any invalid
// entry aborts classification before a single backend call is made:
//
//   - merge   -> update (translated command; empty merges are dropped)
//   - insert  -> insert (value reconstructed into an entity record)
//   - delete  -> delete (the key)
//   - replace -> ErrUnsupportedPatchShape; whole-entity replacement must be
//     expressed as delete plus insert to keep creation semantics explicit
func classify(batch domain.BatchPatch, cfg Config) (*bulkPlan, error) {
	plan := &bulkPlan{}
	for _, entry := range batch {
		switch entry.Patch.Kind {
		case domain.PatchMerge:
			cmd, err := TranslateMerge(entry.Patch)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", entry.Key, err)
			}
			if cmd.IsEmpty() {
				continue
			}
			plan.updates = append(plan.updates, updateOp{key: entry.Key, cmd: cmd})
		case domain.PatchInsert:
			record, err := insertRecord(entry, cfg)
			if err != nil {
				return nil, err
			}
			plan.inserts = append(plan.inserts, record)
		case domain.PatchDelete:
			plan.deletes = append(plan.deletes, entry.Key)
		default:
			return nil, fmt.Errorf("key %q: top-level %s patch: %w",
				entry.Key, entry.Patch.Kind, domain.ErrUnsupportedPatchShape)
		}
	}
	return plan, nil
}

// insertRecord reconstructs an insert patch's value into the record to
// store. The batch key is authoritative for the entity's identity.
func insertRecord(entry domain.BatchEntry, cfg Config) (domain.Document, error) {
	raw, ok := asDocument(entry.Patch.Value)
	if !ok {
		return nil, fmt.Errorf("insert value for key %q is not a document: %w",
			entry.Key, domain.ErrUnsupportedPatchShape)
	}
	entity := cfg.FromRecord(raw.Clone())
	record := cfg.ToRecord(entity)
	record[cfg.KeyField] = entry.Key
	return record, nil
}

func asDocument(v interface{}) (domain.Document, bool) {
	switch val := v.(type) {
	case domain.Document:
		return val, true
	case map[string]interface{}:
		return domain.Document(val), true
	default:
		return nil, false
	}
}

// runBulk drives the backend to the plan's end state: updates first,
// strictly sequentially in batch order with one backend call per key, then
// one bulk insert, then one bulk delete. Phases that fail abort the batch at
// that point; work committed by earlier phases is not rolled back, so
// partial application on failure is accepted, documented behavior.
func runBulk(ctx context.Context, backend domain.Backend, plan *bulkPlan) error {
	for _, op := range plan.updates {
		if err := backend.UpdateOne(ctx, op.key, op.cmd, false); err != nil {
			return fmt.Errorf("bulk update for key %q: %w", op.key, err)
		}
	}
	if len(plan.inserts) > 0 {
		if err := backend.InsertMany(ctx, plan.inserts); err != nil {
			return fmt.Errorf("bulk insert: %w", err)
		}
	}
	if len(plan.deletes) > 0 {
		if _, err := backend.DeleteKeys(ctx, plan.deletes); err != nil {
			return fmt.Errorf("bulk delete: %w", err)
		}
	}
	return nil
}
