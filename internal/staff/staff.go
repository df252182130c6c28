package staff

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/enum"
)

// Errors returned by the roster.
var (
	ErrNameRequired   = errors.New("name is required")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidRole    = errors.New("invalid role")
	ErrDuplicateName  = errors.New("name already on the roster")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrMemberNotFound = errors.New("staff member not found")
	ErrInactive       = errors.New("staff member is inactive")
)

// Role is what a member does on the floor.
type Role string

const (
	RoleAdmin   Role = enum.StaffRoleAdmin
	RoleManager Role = enum.StaffRoleManager
	RoleWaiter  Role = enum.StaffRoleWaiter
	RoleKitchen Role = enum.StaffRoleKitchen
	RoleCashier Role = enum.StaffRoleCashier
)

// Valid reports whether r is a roster role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWaiter, RoleKitchen, RoleCashier:
		return true
	}
	return false
}

// Member is one person on the roster. Names are unique ignoring case since
// sessions and table assignments refer to staff by name.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Changes is a partial update. Nil fields are left alone.
type Changes struct {
	Name   *string
	Email  *string
	Role   *Role
	Active *bool
}

// Roster stores the venue's staff.
type Roster struct {
	mu      sync.Mutex
	members []Member
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Demo returns a small roster for local runs.
func Demo() *Roster {
	r := NewRoster()
	now := time.Now().UTC()
	for _, m := range []Member{
		{Name: "Morgan", Email: "morgan@tableside.local", Role: RoleManager, Active: true},
		{Name: "Jordan", Email: "jordan@tableside.local", Role: RoleWaiter, Active: true},
		{Name: "Priya", Email: "priya@tableside.local", Role: RoleWaiter, Active: true},
		{Name: "Sam", Email: "sam@tableside.local", Role: RoleKitchen, Active: true},
		{Name: "Casey", Email: "casey@tableside.local", Role: RoleCashier, Active: true},
		{Name: "Taylor", Email: "taylor@tableside.local", Role: RoleCashier, Active: false},
		{Name: "Riley", Email: "riley@tableside.local", Role: RoleAdmin, Active: true},
	} {
		if _, err := r.Add(m, now); err != nil {
			panic(fmt.Sprintf("staff: demo roster: %v", err))
		}
	}
	return r
}

// Add validates and stores a member. Role defaults to waiter.
func (r *Roster) Add(m Member, now time.Time) (Member, error) {
	if m.Role == "" {
		m.Role = RoleWaiter
	}
	m, err := normalize(m)
	if err != nil {
		return Member{}, err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(m); err != nil {
		return Member{}, err
	}
	next := make([]Member, len(r.members), len(r.members)+1)
	copy(next, r.members)
	r.members = append(next, m)
	return m, nil
}

// Update applies c to the member with id.
func (r *Roster) Update(id uuid.UUID, c Changes, now time.Time) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return Member{}, ErrMemberNotFound
	}
	m := r.members[i]
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.Email != nil {
		m.Email = *c.Email
	}
	if c.Role != nil {
		m.Role = *c.Role
	}
	if c.Active != nil {
		m.Active = *c.Active
	}
	m, err := normalize(m)
	if err != nil {
		return Member{}, err
	}
	if err := r.checkUnique(m); err != nil {
		return Member{}, err
	}
	m.UpdatedAt = now

	next := slices.Clone(r.members)
	next[i] = m
	r.members = next
	return m, nil
}

// Delete removes a member from the roster.
func (r *Roster) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return ErrMemberNotFound
	}
	r.members = slices.Delete(slices.Clone(r.members), i, i+1)
	return nil
}

// Get looks up a member by id.
func (r *Roster) Get(id uuid.UUID) (Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Member{}, false
	}
	return r.members[i], true
}

// List returns every member ordered by name.
func (r *Roster) List() []Member {
	return r.Search("")
}

// Search returns the members whose name, email or role contains q, ignoring
// case, ordered by name. An empty q matches everyone.
func (r *Roster) Search(q string) []Member {
	q = strings.ToLower(strings.TrimSpace(q))

	r.mu.Lock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		if q == "" ||
			strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Email), q) ||
			strings.Contains(string(m.Role), q) {
			out = append(out, m)
		}
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(x, y Member) int {
		return strings.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
	})
	return out
}

// FindActive resolves a name to an active member, ignoring case and
// surrounding space.
func (r *Roster) FindActive(name string) (Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Member{}, ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		if !m.Active {
			return Member{}, fmt.Errorf("%w: %s", ErrInactive, m.Name)
		}
		return m, nil
	}
	return Member{}, fmt.Errorf("%w: %q", ErrMemberNotFound, name)
}

func normalize(m Member) (Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return Member{}, ErrNameRequired
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return Member{}, fmt.Errorf("%w: %q", ErrInvalidEmail, m.Email)
	}
	if !m.Role.Valid() {
		return Member{}, fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	return m, nil
}

// checkUnique compares m against every other member. Callers hold r.mu.
func (r *Roster) checkUnique(m Member) error {
	for _, o := range r.members {
		if o.ID == m.ID {
			continue
		}
		if strings.EqualFold(o.Name, m.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, m.Name)
		}
		if m.Email != "" && o.Email == m.Email {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, m.Email)
		}
	}
	return nil
}

func (r *Roster) index(id uuid.UUID) int {
	for i, m := range r.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}
