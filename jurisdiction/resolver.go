// Package jurisdiction decides what an admin may see and who an alert or
// broadcast must reach. All functions are pure with respect to the stores:
// they only read the immutable region directory, so a fixed admin always
// yields the same filters, audiences and room lists.
package jurisdiction

import (
	"sort"

	"emergency-alert-service/models"
	"emergency-alert-service/regions"
)

// Realtime room scopes. Admin sessions join the rooms matching their
// jurisdiction; events are published per room.
const (
	RoomCentral = "central_admin"
	// RoomAll reaches every connected session regardless of joined rooms.
	RoomAll = "*"
)

// StateRoom is the realtime room scope for one state.
func StateRoom(state string) string {
	return "state_" + state
}

// CityRoom is the realtime room scope for one city.
func CityRoom(city string) string {
	return "city_" + city
}

// AlertFilter narrows an alert listing to the caller's jurisdiction.
// Empty fields mean "no constraint".
type AlertFilter struct {
	TargetCity  string
	TargetState string
	ActiveOnly  bool
}

// Audience is the resolved notification fan-out for an operation: the admin
// queries whose union must be notified, plus the realtime rooms to publish to.
type Audience struct {
	AdminFilters []models.AdminFilter
	Rooms        []string
}

// Resolver computes jurisdiction-scoped visibility and audiences.
type Resolver struct {
	directory *regions.Directory
}

// NewResolver creates a resolver over the given region directory.
func NewResolver(directory *regions.Directory) *Resolver {
	return &Resolver{directory: directory}
}

// VisibilityFilter maps an admin to the alert filter it is entitled to.
// City and state narrowing supplied by the caller is honored only where the
// role permits it; a city admin's scope is always exactly its own city.
func (r *Resolver) VisibilityFilter(admin *models.Admin, narrowCity, narrowState string) (AlertFilter, error) {
	switch admin.Role {
	case models.RoleCityAdmin:
		return AlertFilter{
			TargetCity:  admin.City,
			TargetState: admin.State,
			ActiveOnly:  true,
		}, nil
	case models.RoleStateAdmin:
		return AlertFilter{
			TargetCity:  narrowCity,
			TargetState: admin.State,
			ActiveOnly:  true,
		}, nil
	case models.RoleCentralAdmin:
		return AlertFilter{
			TargetCity:  narrowCity,
			TargetState: narrowState,
			ActiveOnly:  true,
		}, nil
	default:
		return AlertFilter{}, models.NewAuthorizationError("role %s is not entitled to view alerts", admin.Role)
	}
}

// NewAlertAudience is the fan-out for a freshly created high-severity alert:
// central admins, the state's admins and the city's admins, published to the
// three room scopes.
func (r *Resolver) NewAlertAudience(city, state string) Audience {
	return Audience{
		AdminFilters: []models.AdminFilter{
			{Role: models.RoleCentralAdmin},
			{Role: models.RoleStateAdmin, State: state},
			{Role: models.RoleCityAdmin, City: city},
		},
		Rooms: []string{RoomCentral, StateRoom(state), CityRoom(city)},
	}
}

// BroadcastAudience maps a broadcasting admin to the peers it may reach.
func (r *Resolver) BroadcastAudience(admin *models.Admin) (Audience, error) {
	switch admin.Role {
	case models.RoleCityAdmin:
		return Audience{
			AdminFilters: []models.AdminFilter{
				{Role: models.RoleCityAdmin, City: admin.City},
			},
			Rooms: []string{CityRoom(admin.City)},
		}, nil

	case models.RoleStateAdmin:
		rooms := []string{StateRoom(admin.State)}
		cities := r.directory.CitiesInState(admin.State)
		sort.Strings(cities)
		for _, city := range cities {
			rooms = append(rooms, CityRoom(city))
		}
		return Audience{
			AdminFilters: []models.AdminFilter{
				{Role: models.RoleStateAdmin, State: admin.State},
				{Role: models.RoleCityAdmin, State: admin.State},
			},
			Rooms: rooms,
		}, nil

	case models.RoleCentralAdmin:
		return Audience{
			AdminFilters: []models.AdminFilter{
				{Roles: []models.Role{models.RoleCityAdmin, models.RoleStateAdmin, models.RoleCentralAdmin}},
			},
			Rooms: []string{RoomAll},
		}, nil

	default:
		return Audience{}, models.NewAuthorizationError("role %s may not broadcast", admin.Role)
	}
}

// RoomsForAdmin lists the realtime rooms an admin session joins.
func (r *Resolver) RoomsForAdmin(admin *models.Admin) []string {
	switch admin.Role {
	case models.RoleCentralAdmin:
		return []string{RoomCentral}
	case models.RoleStateAdmin:
		return []string{StateRoom(admin.State)}
	case models.RoleCityAdmin:
		return []string{CityRoom(admin.City), StateRoom(admin.State)}
	default:
		return nil
	}
}
