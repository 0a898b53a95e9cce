// Package commands contains the operations that change routes and stops.
// Every command follows the same pattern: a validated command value built by its
// constructor, and a handler that runs the domain logic inside one unit of work.
package commands

import (
	"context"

	"lastmile/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// RouteRepoFactory provides access to the route repository within a transaction.
	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	// StopRepoFactory provides access to the stop repository within a transaction.
	StopRepoFactory interface {
		StopRepository() ports.StopRepository
	}

	// StopUoW manages transactions for single-stop operations (OTP, evidence).
	StopUoW interface {
		TxManager
		StopRepoFactory
	}

	// StopUoWFactory creates new stop unit of work instances.
	StopUoWFactory interface {
		Create() StopUoW
	}

	// UoW manages transactions across route and stop aggregates.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   stops, err := uow.StopRepository().GetAllByRoute(ctx, routeID)
	//   // ... resequence
	//   err = uow.StopRepository().SaveSequence(ctx, routeID, ids)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		RouteRepoFactory
		StopRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
