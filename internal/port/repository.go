package port

import (
	"github.com/vertextoedge/site-size-cache/internal/domain/repository"
)

// SizeRecordRepository is an alias to domain repository interface
type SizeRecordRepository = repository.SizeRecordRepository

// GuardRepository is an alias to domain repository interface
type GuardRepository = repository.GuardRepository

// TenantRepository is an alias to domain repository interface
type TenantRepository = repository.TenantRepository

// StatsRepository is an alias to domain repository interface
type StatsRepository = repository.StatsRepository

// Store is an alias to domain repository interface
type Store = repository.Store
