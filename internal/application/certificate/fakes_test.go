package certificate

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cmc/certificados-api/internal/domain"
	"github.com/cmc/certificados-api/internal/domain/entity"
	"github.com/cmc/certificados-api/internal/domain/repository"
)

// memStore base en memoria con las tablas del agregado; RunCertificate
// restaura la copia previa si fn falla.
type memStore struct {
	mu     sync.Mutex
	seq    int64
	types  map[int64]entity.ServiceType
	orders map[int64]entity.ServiceOrder
	detail map[int64]entity.ServiceDetail
	certs  map[int64]entity.Certificate
	sheets map[int64]entity.TechnicalSheet

	failOn string // "tipo", "orden", "detalle", "certificado", "ficha"
}

func newMemStore() *memStore {
	return &memStore{
		types:  map[int64]entity.ServiceType{},
		orders: map[int64]entity.ServiceOrder{},
		detail: map[int64]entity.ServiceDetail{},
		certs:  map[int64]entity.Certificate{},
		sheets: map[int64]entity.TechnicalSheet{},
	}
}

var errInjected = errors.New("fallo inyectado")

func (s *memStore) next() int64 { s.seq++; return s.seq }

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.seq = s.seq
	for k, v := range s.types {
		c.types[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.detail {
		c.detail[k] = v
	}
	for k, v := range s.certs {
		c.certs[k] = v
	}
	for k, v := range s.sheets {
		c.sheets[k] = v
	}
	return c
}

func (s *memStore) restore(c *memStore) {
	s.types, s.orders, s.detail, s.certs, s.sheets = c.types, c.orders, c.detail, c.certs, c.sheets
}

func (s *memStore) RunCertificate(ctx context.Context, fn func(repository.ServiceOrderRepository, repository.CertificateRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot()
	if err := fn(orderRepo{s}, certRepo{s}); err != nil {
		s.restore(prev)
		return err
	}
	return nil
}

type orderRepo struct{ s *memStore }

func (r orderRepo) CreateServiceType(_ context.Context, st *entity.ServiceType) error {
	if r.s.failOn == "tipo" {
		return errInjected
	}
	st.ID = r.s.next()
	r.s.types[st.ID] = *st
	return nil
}

func (r orderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	if r.s.failOn == "orden" {
		return errInjected
	}
	if _, ok := r.s.types[o.ServiceTypeID]; !ok {
		return errors.New("fk tipo_servicio")
	}
	o.ID = r.s.next()
	stored := *o
	stored.ServiceType, stored.Details = nil, nil
	r.s.orders[o.ID] = stored
	return nil
}

func (r orderRepo) CreateDetail(_ context.Context, d *entity.ServiceDetail) error {
	if r.s.failOn == "detalle" {
		return errInjected
	}
	d.ID = r.s.next()
	r.s.detail[d.ID] = *d
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*entity.ServiceOrder, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	if st, ok := r.s.types[o.ServiceTypeID]; ok {
		o.ServiceType = &st
	}
	for _, d := range r.s.detail {
		if d.ServiceOrderID == id {
			o.Details = append(o.Details, d)
		}
	}
	return &o, nil
}

type certRepo struct{ s *memStore }

func (r certRepo) Create(_ context.Context, c *entity.Certificate) error {
	if r.s.failOn == "certificado" {
		return errInjected
	}
	c.ID = r.s.next()
	stored := *c
	stored.ServiceOrder, stored.Sheets = nil, nil
	r.s.certs[c.ID] = stored
	return nil
}

func (r certRepo) CreateSheet(_ context.Context, sh *entity.TechnicalSheet) error {
	if r.s.failOn == "ficha" {
		return errInjected
	}
	sh.ID = r.s.next()
	r.s.sheets[sh.ID] = *sh
	return nil
}

func (r certRepo) sheetsOf(certID int64) []entity.TechnicalSheet {
	var out []entity.TechnicalSheet
	for _, sh := range r.s.sheets {
		if sh.CertificateID == certID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r certRepo) GetByID(_ context.Context, id int64) (*entity.Certificate, error) {
	c, ok := r.s.certs[id]
	if !ok {
		return nil, nil
	}
	c.Sheets = r.sheetsOf(id)
	return &c, nil
}

func (r certRepo) List(_ context.Context, limit, offset int) ([]*entity.Certificate, error) {
	ids := make([]int64, 0, len(r.s.certs))
	for id := range r.s.certs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]*entity.Certificate, 0, len(ids))
	for _, id := range ids {
		c, _ := r.GetByID(context.Background(), id)
		out = append(out, c)
	}
	return out, nil
}

func (r certRepo) Update(_ context.Context, c *entity.Certificate) error {
	if _, ok := r.s.certs[c.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *c
	stored.ServiceOrder, stored.Sheets = nil, nil
	r.s.certs[c.ID] = stored
	return nil
}

func (r certRepo) DeleteSheets(_ context.Context, certID int64) (int64, error) {
	var n int64
	for id, sh := range r.s.sheets {
		if sh.CertificateID == certID {
			delete(r.s.sheets, id)
			n++
		}
	}
	return n, nil
}

func (r certRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.certs[id]; !ok {
		return domain.ErrNotFound
	}
	if len(r.sheetsOf(id)) > 0 {
		return domain.ErrConflict
	}
	delete(r.s.certs, id)
	return nil
}

// lectura fuera de transacción, sobre el mismo store
func (s *memStore) orderRepository() repository.ServiceOrderRepository { return orderRepo{s} }
func (s *memStore) certificates() repository.CertificateRepository     { return certRepo{s} }

type fakeUsers map[int64]*entity.User

func (f fakeUsers) Create(context.Context, *entity.User) error { return nil }
func (f fakeUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return f[id], nil
}
func (f fakeUsers) GetByName(context.Context, string) (*entity.User, error) { return nil, nil }
func (f fakeUsers) List(context.Context) ([]*entity.User, error)            { return nil, nil }
func (f fakeUsers) Update(context.Context, *entity.User) error              { return nil }
func (f fakeUsers) Delete(context.Context, int64) error                     { return nil }

type fakeDocs struct {
	renderErr  error
	renders    int
	lastFields map[string]string
	convertErr error
	converts   int
	sourceErr  error
}

func (d *fakeDocs) Render(_ context.Context, _ int64, fields map[string]string) (string, error) {
	d.renders++
	d.lastFields = fields
	if d.renderErr != nil {
		return "", d.renderErr
	}
	return "out.docx", nil
}

func (d *fakeDocs) Convert(context.Context, int64) (string, error) {
	d.converts++
	if d.convertErr != nil {
		return "", d.convertErr
	}
	return "out.pdf", nil
}

func (d *fakeDocs) Source(context.Context, int64) (string, error) {
	if d.sourceErr != nil {
		return "", d.sourceErr
	}
	return "out.docx", nil
}
