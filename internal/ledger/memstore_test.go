// AngelaMos | 2026
// memstore_test.go

package ledger

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

var errInjected = errors.New("injected store failure")

type memState struct {
	users       map[int64]Holder
	sims        map[int64]SIM
	assignments []Assignment
	exits       []ExitLog
	nextAssign  int64
	nextExit    int64
}

func (s *memState) clone() *memState {
	c := &memState{
		users:       make(map[int64]Holder, len(s.users)),
		sims:        make(map[int64]SIM, len(s.sims)),
		assignments: make([]Assignment, len(s.assignments)),
		exits:       slices.Clone(s.exits),
		nextAssign:  s.nextAssign,
		nextExit:    s.nextExit,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.sims {
		c.sims[k] = v
	}
	for i, a := range s.assignments {
		if a.UnassignedAt != nil {
			t := *a.UnassignedAt
			a.UnassignedAt = &t
		}
		c.assignments[i] = a
	}
	return c
}

// memStore serialises transactions behind one mutex, which is a stronger
// guarantee than row locks and enough to exercise the protocol.
type memStore struct {
	mu     sync.Mutex
	st     *memState
	failOn string
}

func newMemStore() *memStore {
	return &memStore{st: &memState{
		users: map[int64]Holder{},
		sims:  map[int64]SIM{},
	}}
}

func (m *memStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, tx Tx) error,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(ctx, &memTx{st: m.st, failOn: m.failOn}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clone()
}

func (m *memStore) addUser(name string, biometricID int, status string) Holder {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := Holder{
		UserID:      int64(len(m.st.users) + 1),
		Name:        name,
		BiometricID: biometricID,
		Status:      status,
	}
	m.st.users[h.UserID] = h
	return h
}

func (m *memStore) addSIM(phone, status string) SIM {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := SIM{
		SIMID:       int64(len(m.st.sims) + 100),
		PhoneNumber: phone,
		Provider:    "Jazz",
		Status:      status,
	}
	m.st.sims[s.SIMID] = s
	return s
}

func (m *memStore) activeForSIM(simID int64) []Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Assignment
	for _, a := range m.st.assignments {
		if a.SIMID == simID && a.Active {
			out = append(out, a)
		}
	}
	return out
}

type memTx struct {
	st     *memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) LockUserByBiometricID(_ context.Context, biometricID int) (*Holder, error) {
	for _, u := range t.st.users {
		if u.BiometricID == biometricID {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (t *memTx) FindSIMByPhone(_ context.Context, phone string) (*SIM, error) {
	for _, s := range t.st.sims {
		if s.PhoneNumber == phone {
			return &s, nil
		}
	}
	return nil, ErrSIMNotFound
}

func (t *memTx) LockSIMs(_ context.Context, simIDs []int64) (map[int64]*SIM, error) {
	out := make(map[int64]*SIM, len(simIDs))
	for _, id := range simIDs {
		if s, ok := t.st.sims[id]; ok {
			out[id] = &s
		}
	}
	return out, nil
}

func (t *memTx) ActiveAssignmentForSIM(_ context.Context, simID int64) (*Holding, error) {
	for _, a := range t.st.assignments {
		if a.SIMID == simID && a.Active {
			u := t.st.users[a.UserID]
			return &Holding{
				Assignment:        a,
				HolderName:        u.Name,
				HolderBiometricID: u.BiometricID,
			}, nil
		}
	}
	return nil, nil
}

func (t *memTx) ActiveAssignmentsForUser(_ context.Context, userID int64) ([]Assignment, error) {
	var out []Assignment
	for i := len(t.st.assignments) - 1; i >= 0; i-- {
		a := t.st.assignments[i]
		if a.UserID == userID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) CloseAssignment(_ context.Context, assignmentID int64, at time.Time) (bool, error) {
	if err := t.fail("CloseAssignment"); err != nil {
		return false, err
	}
	for i := range t.st.assignments {
		a := &t.st.assignments[i]
		if a.AssignmentID != assignmentID || !a.Active {
			continue
		}
		closedAt := at
		if closedAt.Before(a.AssignedAt) {
			closedAt = a.AssignedAt
		}
		a.Active = false
		a.UnassignedAt = &closedAt
		return true, nil
	}
	return false, nil
}

func (t *memTx) InsertAssignment(_ context.Context, a *Assignment) error {
	if err := t.fail("InsertAssignment"); err != nil {
		return err
	}
	for _, existing := range t.st.assignments {
		if existing.SIMID == a.SIMID && existing.Active {
			return core.ErrConflict
		}
	}
	t.st.nextAssign++
	a.AssignmentID = t.st.nextAssign
	a.Active = true
	t.st.assignments = append(t.st.assignments, *a)
	return nil
}

func (t *memTx) AssignmentDetail(_ context.Context, assignmentID int64) (*AssignmentDetail, error) {
	for _, a := range t.st.assignments {
		if a.AssignmentID != assignmentID {
			continue
		}
		u := t.st.users[a.UserID]
		s := t.st.sims[a.SIMID]
		return &AssignmentDetail{
			AssignmentID: a.AssignmentID,
			UserID:       a.UserID,
			UserName:     u.Name,
			BiometricID:  u.BiometricID,
			SIMID:        a.SIMID,
			PhoneNumber:  s.PhoneNumber,
			Provider:     s.Provider,
			AssignedAt:   a.AssignedAt,
			UnassignedAt: a.UnassignedAt,
			Active:       a.Active,
		}, nil
	}
	return nil, core.ErrNotFound
}

func (t *memTx) UpdateSIMStatus(_ context.Context, simID int64, status, _ string, _ time.Time) error {
	if err := t.fail("UpdateSIMStatus"); err != nil {
		return err
	}
	s := t.st.sims[simID]
	s.Status = status
	t.st.sims[simID] = s
	return nil
}

func (t *memTx) DeactivateUser(_ context.Context, userID int64, _ string, _ time.Time) error {
	if err := t.fail("DeactivateUser"); err != nil {
		return err
	}
	u := t.st.users[userID]
	u.Status = UserInactive
	t.st.users[userID] = u
	return nil
}

func (t *memTx) InsertExitLog(_ context.Context, e *ExitLog) error {
	if err := t.fail("InsertExitLog"); err != nil {
		return err
	}
	t.st.nextExit++
	e.ExitID = t.st.nextExit
	t.st.exits = append(t.st.exits, *e)
	return nil
}

func (t *memTx) PurgeDeadSIMs(_ context.Context, userID int64) ([]string, error) {
	if err := t.fail("PurgeDeadSIMs"); err != nil {
		return nil, err
	}

	dead := map[int64]bool{}
	for _, a := range t.st.assignments {
		s, ok := t.st.sims[a.SIMID]
		if !ok || a.UserID != userID || a.Active {
			continue
		}
		if s.Status == SIMInactive || s.Status == SIMOutOfService {
			dead[a.SIMID] = true
		}
	}
	for _, a := range t.st.assignments {
		if a.Active && dead[a.SIMID] {
			delete(dead, a.SIMID)
		}
	}

	var phones []string
	for id := range dead {
		phones = append(phones, t.st.sims[id].PhoneNumber)
		delete(t.st.sims, id)
	}
	t.st.assignments = slices.DeleteFunc(t.st.assignments, func(a Assignment) bool {
		return dead[a.SIMID]
	})
	slices.Sort(phones)

	return phones, nil
}
