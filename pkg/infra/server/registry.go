package server

import (
	"sync"

	"github.com/kart-io/formfill/pkg/infra/server/service"
	"github.com/kart-io/formfill/pkg/infra/server/transport"
	"github.com/kart-io/formfill/pkg/infra/server/transport/grpc"
)

// Registry tracks registered services and the gRPC service descriptors
// that should be installed on the gRPC transport when it starts.
type Registry struct {
	mu        sync.RWMutex
	services  map[string]service.Service
	grpcDescs []*transport.GRPCServiceDesc
}

// NewRegistry creates a new service registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]service.Service),
	}
}

// RegisterService registers a service. grpcDesc may be nil for services
// that only expose HTTP routes. Registering the same service name twice
// replaces the earlier entry.
func (r *Registry) RegisterService(svc service.Service, grpcDesc *transport.GRPCServiceDesc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[svc.ServiceName()] = svc
	if grpcDesc != nil {
		r.grpcDescs = append(r.grpcDescs, grpcDesc)
	}
	return nil
}

// RegisterGRPC registers only a gRPC handler for a service.
func (r *Registry) RegisterGRPC(svc service.Service, desc *transport.GRPCServiceDesc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[svc.ServiceName()] = svc
	r.grpcDescs = append(r.grpcDescs, desc)
	return nil
}

// GetService returns a registered service by name.
func (r *Registry) GetService(name string) (service.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	return svc, ok
}

// GetAllServices returns all registered services in no particular order.
func (r *Registry) GetAllServices() []service.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Service, 0, len(r.services))
	for _, svc := range r.services {
		out = append(out, svc)
	}
	return out
}

// ApplyToGRPC installs every recorded gRPC descriptor on the server.
func (r *Registry) ApplyToGRPC(server *grpc.Server) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, desc := range r.grpcDescs {
		if err := server.RegisterGRPCService(desc); err != nil {
			return err
		}
	}
	return nil
}
