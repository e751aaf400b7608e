package ports

import (
	"context"

	"github.com/aretw0/datadesk/pkg/domain"
)

// Dispatcher handles one inbound event and returns what the transport must
// show. Transports depend on this interface rather than on the controller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) ([]domain.Command, error)
}
