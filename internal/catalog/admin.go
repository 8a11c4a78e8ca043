package catalog

import (
	"context"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/store"
)

// StoredServices returns the admin-managed services only, in storage order.
func (c *Catalog) StoredServices(ctx context.Context) ([]model.Service, error) {
	return store.LoadList[model.Service](ctx, c.store, store.SlotServices)
}

// SaveService inserts svc or replaces the stored service with the same id.
// Reports false when svc is invalid or the write fails.
func (c *Catalog) SaveService(ctx context.Context, svc model.Service) bool {
	if err := model.Validate(svc); err != nil {
		c.log.Warn("rejected service", "id", svc.ID, "error", err)
		return false
	}

	err := c.writer.Do(ctx, store.SlotServices, func(ctx context.Context) error {
		services, err := store.LoadList[model.Service](ctx, c.store, store.SlotServices)
		if err != nil {
			return err
		}

		replaced := false
		for i := range services {
			if services[i].ID == svc.ID {
				services[i] = svc
				replaced = true
				break
			}
		}
		if !replaced {
			services = append(services, svc)
		}

		return store.SaveList(ctx, c.store, store.SlotServices, services)
	})
	if err != nil {
		c.log.Error("save service failed", "id", svc.ID, "error", err)
		return false
	}
	return true
}

// DeleteService removes every stored service with the given id.
// Seed services are unaffected. Deleting an unknown id still succeeds.
func (c *Catalog) DeleteService(ctx context.Context, id string) bool {
	err := c.writer.Do(ctx, store.SlotServices, func(ctx context.Context) error {
		services, err := store.LoadList[model.Service](ctx, c.store, store.SlotServices)
		if err != nil {
			return err
		}

		kept := services[:0]
		for _, svc := range services {
			if svc.ID != id {
				kept = append(kept, svc)
			}
		}

		return store.SaveList(ctx, c.store, store.SlotServices, kept)
	})
	if err != nil {
		c.log.Error("delete service failed", "id", id, "error", err)
		return false
	}
	return true
}
