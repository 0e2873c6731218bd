package docstore

import (
	"fmt"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// TranslateMerge converts one entity's merge patch into a backend update
// command, flattening nested merges into dotted-path assignments and
// removals. The backend receives a flat list of fully-qualified paths, never
// a nested replacement of a sub-object, so siblings of a merged field are
// preserved.
//
// Only a merge is valid here; replace, delete and insert at the top level
// are classified by the bulk sequencer before a patch reaches this
// translator. An empty merge yields an empty command, which callers treat
// as a no-op.
func TranslateMerge(p domain.Patch) (domain.UpdateCommand, error) {
	if p.Kind != domain.PatchMerge {
		return domain.UpdateCommand{}, fmt.Errorf("top-level %s patch: %w", p.Kind, domain.ErrUnsupportedPatchShape)
	}
	var cmd domain.UpdateCommand
	if err := flatten("", p.Fields, &cmd); err != nil {
		return domain.UpdateCommand{}, err
	}
	return cmd, nil
}

// flatten accumulates one field map into cmd, extending the dotted path as
// it recurses. Dispatch is purely on the patch variant; field types are
// never inspected.
func flatten(prefix string, fields map[string]domain.Patch, cmd *domain.UpdateCommand) error {
	for name, sub := range fields {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		switch sub.Kind {
		case domain.PatchReplace:
			if cmd.Set == nil {
				cmd.Set = make(map[string]interface{})
			}
			cmd.Set[path] = sub.Value
		case domain.PatchDelete:
			cmd.Unset = append(cmd.Unset, path)
		case domain.PatchMerge:
			if err := flatten(path, sub.Fields, cmd); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s patch at field %q: %w", sub.Kind, path, domain.ErrUnsupportedPatchShape)
		}
	}
	return nil
}
