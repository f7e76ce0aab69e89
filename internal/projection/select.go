package projection

import "gravex-pools/internal/domain"

// SelectByID returns a copy of the first pool whose id matches, or nil.
func SelectByID(pools []domain.NormalizedPool, id string) *domain.NormalizedPool {
	if id == "" {
		return nil
	}
	for i := range pools {
		if pools[i].Record.ID == id {
			p := pools[i]
			return &p
		}
	}
	return nil
}
