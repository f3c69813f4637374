package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fairgrid/fairgrid/internal/model"
)

// referenceAttachments validates each referenced media asset exists, then
// records the reference set as the edition's attachments attribute.  A
// dangling reference fails the unit before anything is written.
func (o *Orchestrator) referenceAttachments(ctx context.Context, eventID, editionID uint64, in *model.AttachmentInput) error {
	refs := []struct {
		kind string
		id   *uint64
	}{
		{"video", in.VideoID},
		{"brochure", in.BrochureID},
		{"logo", in.LogoID},
		{"wrapper", in.WrapperID},
		{"og_image", in.OgImageID},
	}
	out := make(map[string]uint64, len(refs))
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := o.Media.Exists(ctx, *ref.id, ref.kind)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s asset %d does not exist", ref.kind, *ref.id)
		}
		out[ref.kind] = *ref.id
	}
	if len(out) == 0 {
		return nil
	}
	blob, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return o.Attributes.Upsert(ctx, eventID, editionID, model.AttrAttachments, string(blob))
}
