package http_test

import (
	"context"
	"sort"
	"sync"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

// memDB base en memoria para los tests de handlers. Sin rollback: los tests
// de emisión fallida viven en el paquete certificate.
type memDB struct {
	mu     sync.Mutex
	seq    int64
	roles  map[int64]entity.Role
	users  map[int64]entity.User
	types  map[int64]entity.ServiceType
	orders map[int64]entity.ServiceOrder
	detail map[int64]entity.ServiceDetail
	certs  map[int64]entity.Certificate
	sheets map[int64]entity.TechnicalSheet
}

func newMemDB() *memDB {
	return &memDB{
		roles:  map[int64]entity.Role{},
		users:  map[int64]entity.User{},
		types:  map[int64]entity.ServiceType{},
		orders: map[int64]entity.ServiceOrder{},
		detail: map[int64]entity.ServiceDetail{},
		certs:  map[int64]entity.Certificate{},
		sheets: map[int64]entity.TechnicalSheet{},
	}
}

func (db *memDB) next() int64 { db.seq++; return db.seq }

// ── Roles ─────────────────────────────────────────────────────────────────────

type roleRepo struct{ db *memDB }

func (r roleRepo) Create(_ context.Context, role *entity.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	role.ID = r.db.next()
	r.db.roles[role.ID] = *role
	return nil
}

func (r roleRepo) GetByID(_ context.Context, id int64) (*entity.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	role, ok := r.db.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r roleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, role := range r.db.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, nil
}

func (r roleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Role, 0, len(r.db.roles))
	for _, role := range r.db.roles {
		role := role
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r roleRepo) Update(_ context.Context, role *entity.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.roles[role.ID]; !ok {
		return domain.ErrNotFound
	}
	r.db.roles[role.ID] = *role
	return nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

type userRepo struct{ db *memDB }

func (r userRepo) withRole(u entity.User) *entity.User {
	if role, ok := r.db.roles[u.RoleID]; ok {
		u.RoleName = role.Name
	}
	return &u
}

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u.ID = r.db.next()
	r.db.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return r.withRole(u), nil
}

func (r userRepo) GetByName(_ context.Context, name string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Name == name {
			return r.withRole(u), nil
		}
	}
	return nil, nil
}

func (r userRepo) List(_ context.Context) ([]*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, r.withRole(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.db.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return domain.ErrNotFound
	}
	for _, c := range r.db.certs {
		if c.UserID == id {
			return domain.ErrConflict
		}
	}
	delete(r.db.users, id)
	return nil
}

// ── Órdenes y certificados ────────────────────────────────────────────────────

// RunCertificate ejecuta fn sobre el mismo store.
func (db *memDB) RunCertificate(ctx context.Context, fn func(repository.ServiceOrderRepository, repository.CertificateRepository) error) error {
	return fn(orderRepo{db}, certRepo{db})
}

type orderRepo struct{ db *memDB }

func (r orderRepo) CreateServiceType(_ context.Context, st *entity.ServiceType) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	st.ID = r.db.next()
	r.db.types[st.ID] = *st
	return nil
}

func (r orderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o.ID = r.db.next()
	stored := *o
	stored.ServiceType, stored.Details = nil, nil
	r.db.orders[o.ID] = stored
	return nil
}

func (r orderRepo) CreateDetail(_ context.Context, d *entity.ServiceDetail) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d.ID = r.db.next()
	r.db.detail[d.ID] = *d
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*entity.ServiceOrder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	if st, ok := r.db.types[o.ServiceTypeID]; ok {
		o.ServiceType = &st
	}
	for _, d := range r.db.detail {
		if d.ServiceOrderID == id {
			o.Details = append(o.Details, d)
		}
	}
	return &o, nil
}

type certRepo struct{ db *memDB }

func (r certRepo) Create(_ context.Context, c *entity.Certificate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.next()
	stored := *c
	stored.ServiceOrder, stored.Sheets = nil, nil
	r.db.certs[c.ID] = stored
	return nil
}

func (r certRepo) CreateSheet(_ context.Context, s *entity.TechnicalSheet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s.ID = r.db.next()
	r.db.sheets[s.ID] = *s
	return nil
}

func (r certRepo) load(id int64) (*entity.Certificate, bool) {
	c, ok := r.db.certs[id]
	if !ok {
		return nil, false
	}
	for _, s := range r.db.sheets {
		if s.CertificateID == id {
			c.Sheets = append(c.Sheets, s)
		}
	}
	sort.Slice(c.Sheets, func(i, j int) bool { return c.Sheets[i].ID < c.Sheets[j].ID })
	return &c, true
}

func (r certRepo) GetByID(_ context.Context, id int64) (*entity.Certificate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, _ := r.load(id)
	return c, nil
}

func (r certRepo) List(_ context.Context, limit, offset int) ([]*entity.Certificate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ids := make([]int64, 0, len(r.db.certs))
	for id := range r.db.certs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if offset >= len(ids) {
		return []*entity.Certificate{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]*entity.Certificate, 0, len(ids))
	for _, id := range ids {
		c, _ := r.load(id)
		out = append(out, c)
	}
	return out, nil
}

func (r certRepo) Update(_ context.Context, c *entity.Certificate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.certs[c.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *c
	stored.ServiceOrder, stored.Sheets = nil, nil
	r.db.certs[c.ID] = stored
	return nil
}

func (r certRepo) DeleteSheets(_ context.Context, certID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.sheets {
		if s.CertificateID == certID {
			delete(r.db.sheets, id)
			n++
		}
	}
	return n, nil
}

func (r certRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.certs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.certs, id)
	return nil
}
