package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/sdutils/internal/webui"
)

// ErrUnknownCheckpoint is returned when the server does not list a
// checkpoint the run would plot.
var ErrUnknownCheckpoint = errors.New("checkpoint not known to webui")

// ModelLister lists the checkpoints a server can load.
type ModelLister interface {
	Checkpoints(ctx context.Context) ([]webui.Model, error)
}

// CheckModels verifies every name is loadable by the server.
func CheckModels(ctx context.Context, l ModelLister, names []string) error {
	models, err := l.Checkpoints(ctx)
	if err != nil {
		return fmt.Errorf("list checkpoints: %w", err)
	}
	var missing []string
	for _, n := range names {
		if !webui.HasCheckpoint(models, n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCheckpoint, strings.Join(missing, ", "))
	}
	return nil
}
