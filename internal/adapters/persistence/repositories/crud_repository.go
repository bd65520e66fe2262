package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"orderdesk-api/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Payload is a create/update body or a criteria object keyed by JSON field name
type Payload map[string]any

// Filter restricts FetchAll and Count
type Filter struct {
	Where  Payload
	Limit  int
	Offset int
}

// Relation declares an attachable field that is stored as join rows
// instead of a column, e.g. productIds -> order_products(order_id, product_id).
type Relation struct {
	Field     string
	JoinTable string
	OwnerKey  string
	TargetKey string
	Target    string
}

// JoinColumn is a join table column referencing an entity
type JoinColumn struct {
	Table  string
	Column string
}

// Descriptor declares the attachable relations of an entity, the join rows
// removed with it and the nullable references cleared when it goes away.
type Descriptor struct {
	Relations  []Relation
	Dependents []JoinColumn
	Nullify    []JoinColumn
}

// Hook runs inside the write transaction after the payload is applied and
// before the row is saved. selection maps every relation to the ids the
// entity holds once the write commits.
type Hook[T any] func(tx *gorm.DB, entity *T, selection map[string][]uint) error

// readOnlyFields are never taken from a payload
var readOnlyFields = map[string]bool{"id": true, "createdAt": true, "updatedAt": true}

var schemaCache sync.Map

// validate checks the `validate` tags of a model; errors name the JSON field
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// CRUDRepository implements create/read/update/delete/exists/count for any
// model, attaching and detaching the declared relations in the same
// transaction as the row write.
type CRUDRepository[T any] struct {
	db        *gorm.DB
	schema    *schema.Schema
	relations []Relation
	byField   map[string]Relation
	columns   map[string]string
	dependent []JoinColumn
	nullify   []JoinColumn
	log       logrus.FieldLogger
}

// NewCRUDRepository resolves the model schema and the descriptor once
func NewCRUDRepository[T any](db *gorm.DB, desc Descriptor) (*CRUDRepository[T], error) {
	s, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s: no primary key", s.Table)
	}

	columns := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		columns[name] = f.DBName
	}

	byField := make(map[string]Relation, len(desc.Relations))
	for _, rel := range desc.Relations {
		if _, clash := columns[rel.Field]; clash {
			return nil, fmt.Errorf("%s: relation %q shadows a column", s.Table, rel.Field)
		}
		byField[rel.Field] = rel
	}

	return &CRUDRepository[T]{
		db:        db,
		schema:    s,
		relations: desc.Relations,
		byField:   byField,
		columns:   columns,
		dependent: desc.Dependents,
		nullify:   desc.Nullify,
		log:       logrus.StandardLogger(),
	}, nil
}

// MustCRUDRepository is NewCRUDRepository for descriptors declared at startup
func MustCRUDRepository[T any](db *gorm.DB, desc Descriptor) *CRUDRepository[T] {
	r, err := NewCRUDRepository[T](db, desc)
	if err != nil {
		panic(err)
	}
	return r
}

// WithLogger sets the logger receiving driver errors hidden from callers
func (r *CRUDRepository[T]) WithLogger(log logrus.FieldLogger) *CRUDRepository[T] {
	r.log = log
	return r
}

// Table returns the model table name
func (r *CRUDRepository[T]) Table() string {
	return r.schema.Table
}

// HasRelation reports whether field is an attachable relation
func (r *CRUDRepository[T]) HasRelation(field string) bool {
	_, ok := r.byField[field]
	return ok
}

// Create inserts a row and attaches every non-empty relation
func (r *CRUDRepository[T]) Create(ctx context.Context, data Payload) (*T, error) {
	return r.CreateWith(ctx, data, nil)
}

// CreateWith is Create with a hook run in the insert transaction
func (r *CRUDRepository[T]) CreateWith(ctx context.Context, data Payload, hook Hook[T]) (*T, error) {
	row, links, err := r.split(data)
	if err != nil {
		return nil, err
	}

	entity := new(T)
	if err := r.apply(row, entity); err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.prepare(tx, 0, entity, links, hook); err != nil {
			return err
		}
		if err := tx.Create(entity).Error; err != nil {
			return r.storeError(err)
		}
		return r.attach(tx, r.id(ctx, entity), links, false)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// FetchAll returns every matching row; no match is an empty slice
func (r *CRUDRepository[T]) FetchAll(ctx context.Context, filter Filter) ([]*T, error) {
	q, err := r.query(ctx, filter.Where)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	items := make([]*T, 0)
	if err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: r.pk()}}).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FetchByID returns the row with the given id; found is false when absent
func (r *CRUDRepository[T]) FetchByID(ctx context.Context, id uint) (*T, bool, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// UpdateByID applies a partial update. Supplied relations replace the
// current join rows. Nothing is written when the row is absent.
func (r *CRUDRepository[T]) UpdateByID(ctx context.Context, id uint, data Payload) (*T, bool, error) {
	return r.UpdateByIDWith(ctx, id, data, nil)
}

// UpdateByIDWith is UpdateByID with a hook run in the update transaction.
// The hook is not called when the row is absent.
func (r *CRUDRepository[T]) UpdateByIDWith(ctx context.Context, id uint, data Payload, hook Hook[T]) (*T, bool, error) {
	row, links, err := r.split(data)
	if err != nil {
		return nil, false, err
	}

	var (
		entity *T
		found  bool
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entity, found, err = r.first(tx, id)
		if err != nil || !found {
			return err
		}
		if err := r.apply(row, entity); err != nil {
			return err
		}
		if err := r.prepare(tx, id, entity, links, hook); err != nil {
			return err
		}
		if err := tx.Save(entity).Error; err != nil {
			return r.storeError(err)
		}
		return r.attach(tx, id, links, true)
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return entity, true, nil
}

// DestroyByID removes the row and every join row referencing it
func (r *CRUDRepository[T]) DestroyByID(ctx context.Context, id uint) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, ok, err := r.first(tx, id)
		if err != nil || !ok {
			return err
		}
		found = true

		for _, dep := range r.dependent {
			if err := tx.Exec("DELETE FROM ? WHERE ? = ?",
				clause.Table{Name: dep.Table}, clause.Column{Name: dep.Column}, id).Error; err != nil {
				return err
			}
		}
		for _, ref := range r.nullify {
			if err := tx.Exec("UPDATE ? SET ? = NULL WHERE ? = ?",
				clause.Table{Name: ref.Table}, clause.Column{Name: ref.Column}, clause.Column{Name: ref.Column}, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(entity).Error
	})
	return found, err
}

// Exists reports whether a row matches every criteria field. Empty
// criteria match nothing.
func (r *CRUDRepository[T]) Exists(ctx context.Context, criteria Payload) (bool, error) {
	if len(criteria) == 0 {
		return false, nil
	}
	n, err := r.Count(ctx, Filter{Where: criteria})
	return n > 0, err
}

// Count returns the number of matching rows
func (r *CRUDRepository[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	q, err := r.query(ctx, filter.Where)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// LinkedIDs returns the ids currently attached through a relation
func (r *CRUDRepository[T]) LinkedIDs(ctx context.Context, id uint, field string) ([]uint, error) {
	rel, ok := r.byField[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no relation %q", domain.ErrValidation, r.schema.Table, field)
	}
	return r.linked(r.db.WithContext(ctx), id, rel)
}

func (r *CRUDRepository[T]) linked(tx *gorm.DB, id uint, rel Relation) ([]uint, error) {
	ids := make([]uint, 0)
	err := tx.
		Table(rel.JoinTable).
		Where(clause.Eq{Column: clause.Column{Name: rel.OwnerKey}, Value: id}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: rel.TargetKey}}).
		Pluck(rel.TargetKey, &ids).Error
	return ids, err
}

// split separates relation keys and read-only keys from the column payload
func (r *CRUDRepository[T]) split(data Payload) (Payload, map[string][]uint, error) {
	row := make(Payload, len(data))
	links := make(map[string][]uint)
	for k, v := range data {
		if _, ok := r.byField[k]; ok {
			ids, err := ParseIDs(k, v)
			if err != nil {
				return nil, nil, err
			}
			links[k] = ids
			continue
		}
		if readOnlyFields[k] {
			continue
		}
		row[k] = v
	}
	return row, links, nil
}

// apply decodes a column payload onto entity; only supplied fields change
func (r *CRUDRepository[T]) apply(row Payload, entity *T) error {
	if len(row) == 0 {
		return nil
	}
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := json.Unmarshal(b, entity); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// prepare runs the hook against the selection left after the write, then
// validates the entity. id is zero on create.
func (r *CRUDRepository[T]) prepare(tx *gorm.DB, id uint, entity *T, links map[string][]uint, hook Hook[T]) error {
	if hook != nil {
		selection := make(map[string][]uint, len(r.relations))
		for _, rel := range r.relations {
			ids, ok := links[rel.Field]
			if !ok && id != 0 {
				var err error
				if ids, err = r.linked(tx, id, rel); err != nil {
					return err
				}
			}
			if ids == nil {
				ids = []uint{}
			}
			selection[rel.Field] = ids
		}
		if err := hook(tx, entity, selection); err != nil {
			return err
		}
	}
	return Validate(entity)
}

// Validate checks the `validate` tags of a model and reports the first
// failing field as domain.ErrValidation
func Validate(entity any) error {
	err := validate.Struct(entity)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}

	fe := fields[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, fe.Field())
	case "email":
		return fmt.Errorf("%w: %s must be an email address", domain.ErrValidation, fe.Field())
	case "gte":
		return fmt.Errorf("%w: %s must be at least %s", domain.ErrValidation, fe.Field(), fe.Param())
	}
	return fmt.Errorf("%w: %s is invalid", domain.ErrValidation, fe.Field())
}

// attach writes join rows; with replace the current rows of every supplied
// relation are removed first.
func (r *CRUDRepository[T]) attach(tx *gorm.DB, id uint, links map[string][]uint, replace bool) error {
	now := time.Now()
	for _, rel := range r.relations {
		ids, ok := links[rel.Field]
		if !ok {
			continue
		}
		if replace {
			if err := tx.Exec("DELETE FROM ? WHERE ? = ?",
				clause.Table{Name: rel.JoinTable}, clause.Column{Name: rel.OwnerKey}, id).Error; err != nil {
				return err
			}
		}
		if len(ids) == 0 {
			continue
		}

		var n int64
		if err := tx.Table(rel.Target).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: %s references unknown %s", domain.ErrValidation, rel.Field, rel.Target)
		}

		rows := make([]map[string]any, 0, len(ids))
		for _, target := range ids {
			rows = append(rows, map[string]any{
				rel.OwnerKey:  id,
				rel.TargetKey: target,
				"created_at":  now,
			})
		}
		if err := tx.Table(rel.JoinTable).Create(rows).Error; err != nil {
			return r.storeError(err)
		}
	}
	return nil
}

// query builds a model query with equality criteria on declared fields
func (r *CRUDRepository[T]) query(ctx context.Context, where Payload) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if len(where) == 0 {
		return q, nil
	}
	conds := make(map[string]any, len(where))
	for k, v := range where {
		col, ok := r.columns[k]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrValidation, k)
		}
		conds[col] = v
	}
	return q.Where(conds), nil
}

func (r *CRUDRepository[T]) first(tx *gorm.DB, id uint) (*T, bool, error) {
	entity := new(T)
	err := tx.Where(clause.Eq{Column: clause.Column{Name: r.pk()}, Value: id}).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entity, true, nil
}

func (r *CRUDRepository[T]) pk() string {
	return r.schema.PrioritizedPrimaryField.DBName
}

func (r *CRUDRepository[T]) id(ctx context.Context, entity *T) uint {
	v, _ := r.schema.PrioritizedPrimaryField.ValueOf(ctx, reflect.ValueOf(entity).Elem())
	id, _ := ParseID(v)
	return id
}

// ParseIDs reads an id list from a decoded JSON array or a Go slice.
// A repeated id would attach the same pair twice.
func ParseIDs(field string, v any) ([]uint, error) {
	var raw []any
	switch x := v.(type) {
	case nil:
		return []uint{}, nil
	case []uint:
		for _, id := range x {
			raw = append(raw, id)
		}
	case []int:
		for _, id := range x {
			raw = append(raw, id)
		}
	case []any:
		raw = x
	default:
		return nil, fmt.Errorf("%w: %s must be a list of ids", domain.ErrValidation, field)
	}

	ids := make([]uint, 0, len(raw))
	seen := make(map[uint]bool, len(raw))
	for _, item := range raw {
		id, ok := ParseID(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s contains an invalid id", domain.ErrValidation, field)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s lists id %d twice", domain.ErrConflict, field, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// MaxID is the largest id accepted, the same range as a path id
const MaxID = math.MaxUint32

// ParseID reads an id in [1, MaxID] from a decoded JSON number or a Go integer
func ParseID(v any) (uint, bool) {
	switch x := v.(type) {
	case uint:
		return x, x > 0 && uint64(x) <= MaxID
	case uint64:
		return uint(x), x > 0 && x <= MaxID
	case int:
		return uint(x), x > 0 && int64(x) <= MaxID
	case int64:
		return uint(x), x > 0 && x <= MaxID
	case float64:
		if x <= 0 || x > MaxID || x != math.Trunc(x) {
			return 0, false
		}
		return uint(x), true
	case json.Number:
		n, err := x.Int64()
		return uint(n), err == nil && n > 0 && n <= MaxID
	}
	return 0, false
}

// storeError maps constraint violations reported by the driver. The driver
// text names tables and columns, so it is logged and not returned.
func (r *CRUDRepository[T]) storeError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		r.log.WithError(err).WithField("table", r.Table()).Warn("unique constraint violated")
		return fmt.Errorf("%w: duplicate value", domain.ErrValidation)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		r.log.WithError(err).WithField("table", r.Table()).Warn("foreign key constraint violated")
		return fmt.Errorf("%w: referenced item does not exist", domain.ErrValidation)
	}
	return err
}
