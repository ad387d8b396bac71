package layout

import (
	"errors"
	"fmt"
	"image"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// Clamp intersects the region with bounds. The result is empty when the region
// lies fully outside the image or has a non-positive width or height.
func Clamp(r entity.Region, bounds image.Rectangle) image.Rectangle {
	return r.Rect().Intersect(bounds)
}

// ValidateConfig rejects configurations whose record keys would collide: duplicate
// keywords, duplicate titles, a keyword equal to a title, or either one using the
// filename column. Records still apply last-write-wins when this check is skipped.
func ValidateConfig(rules []entity.KeywordRule, l entity.Layout) error {
	var errs []error
	seen := map[string]string{constants.FilenameColumn: "filename column"}

	for i, r := range rules {
		switch {
		case r.Keyword == "":
			errs = append(errs, fmt.Errorf("rules[%d]: keyword is required", i))
			continue
		case r.Skip < 0:
			errs = append(errs, fmt.Errorf("rules[%d] %q: skip must be >= 0", i, r.Keyword))
		case r.CharLimit < 0:
			errs = append(errs, fmt.Errorf("rules[%d] %q: char limit must be >= 0", i, r.Keyword))
		}
		if _, ok := constants.CanonicalizeDirection(string(r.Direction)); !ok {
			errs = append(errs, fmt.Errorf("rules[%d] %q: unknown direction %q", i, r.Keyword, r.Direction))
		}
		if prev, ok := seen[r.Keyword]; ok {
			errs = append(errs, fmt.Errorf("rules[%d]: keyword %q collides with %s", i, r.Keyword, prev))
			continue
		}
		seen[r.Keyword] = fmt.Sprintf("rules[%d]", i)
	}

	for i, rg := range l {
		if prev, ok := seen[rg.Title]; ok {
			errs = append(errs, fmt.Errorf("layout[%d]: title %q collides with %s", i, rg.Title, prev))
			continue
		}
		seen[rg.Title] = fmt.Sprintf("layout[%d]", i)
	}

	if len(errs) > 0 {
		return common.NewAppError(common.CodeConfig, "conflicting field configuration",
			errors.Join(append([]error{common.ErrInvalidInput}, errs...)...))
	}
	return nil
}
