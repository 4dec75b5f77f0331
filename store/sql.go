package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"answerking/domain"
)

// Dialect selects the SQL flavour of a SQLStore.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// SQLStore implements domain.Store over relational tables. Every aggregate
// save runs in one transaction; link tables are rewritten on each save.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// compile-time assertion that SQLStore implements domain.Store
var _ domain.Store = (*SQLStore)(nil)

// OpenSQLStore connects to dsn, applies pending migrations and returns the
// store.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	driverName := SQLiteDriverName
	switch dialect {
	case DialectSQLite:
		if dsn == "" {
			return nil, errors.New("sqlite dsn required")
		}
	case DialectMySQL:
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
		driverName = "mysql"
	default:
		return nil, fmt.Errorf("unknown sql dialect: %s", dialect)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// :memory: lives on a single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := ApplyMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// mysqlDSN validates dsn and sets the options the store relies on.
// ClientFoundRows makes an UPDATE that changes nothing still report the
// matched row, which saveRow uses to tell updates from inserts.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) Products() domain.ProductRepository { return sqlProducts{s} }
func (s *SQLStore) Categories() domain.CategoryRepository { return sqlCategories{s} }
func (s *SQLStore) Tags() domain.TagRepository { return sqlTags{s} }
func (s *SQLStore) Orders() domain.OrderRepository { return sqlOrders{s} }
func (s *SQLStore) Payments() domain.PaymentRepository { return sqlPayments{s} }

// Dialect reports the SQL flavour in use.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// selectIn runs query after expanding slice arguments for IN (?) clauses.
func (s *SQLStore) selectIn(ctx context.Context, dest any, query string, args ...any) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

// dbTime stores timestamps as RFC 3339 text so every driver round-trips
// them with full precision.
type dbTime time.Time

func (t dbTime) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(time.RFC3339Nano), nil
}

func (t *dbTime) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		*t = dbTime(v.UTC())
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = dbTime(parsed.UTC())
	return nil
}

func insertSQL(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		table, strings.Join(columns, ", "), strings.Join(columns, ", :"))
}

func updateSQL(table string, columns []string) string {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = :" + c
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", table, strings.Join(sets, ", "))
}

// saveRow writes arg into table. A zero id inserts a new row and returns
// the generated id; otherwise the row is updated, or inserted under id when
// it does not exist yet.
func saveRow(ctx context.Context, tx *sqlx.Tx, table string, columns []string, id int64, arg any) (int64, error) {
	if id == 0 {
		res, err := tx.NamedExecContext(ctx, insertSQL(table, columns), arg)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := tx.NamedExecContext(ctx, updateSQL(table, columns), arg)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		if _, err := tx.NamedExecContext(ctx, insertSQL(table, append([]string{"id"}, columns...)), arg); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// replaceLinks rewrites the (owner, other) pairs of one owner.
func replaceLinks(ctx context.Context, tx *sqlx.Tx, table, ownerCol, otherCol string, owner int64, others []int64) error {
	del := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, ownerCol))
	if _, err := tx.ExecContext(ctx, del, owner); err != nil {
		return err
	}
	ins := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", table, ownerCol, otherCol))
	for _, other := range others {
		if _, err := tx.ExecContext(ctx, ins, owner, other); err != nil {
			return err
		}
	}
	return nil
}

type linkRow struct {
	Owner int64 `db:"link_owner"`
	Other int64 `db:"link_other"`
}

// loadLinks returns the linked ids of each owner, ascending.
func (s *SQLStore) loadLinks(ctx context.Context, table, ownerCol, otherCol string, owners []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(owners))
	if len(owners) == 0 {
		return out, nil
	}
	var links []linkRow
	query := fmt.Sprintf("SELECT %s AS link_owner, %s AS link_other FROM %s WHERE %s IN (?) ORDER BY %s, %s",
		ownerCol, otherCol, table, ownerCol, ownerCol, otherCol)
	if err := s.selectIn(ctx, &links, query, owners); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	for _, l := range links {
		out[l.Owner] = append(out[l.Owner], l.Other)
	}
	return out, nil
}

func int64s[T ~int64](ids []T) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func typedIDs[T ~int64](ids []int64) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = T(id)
	}
	return out
}

// Products

type productRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Retired     bool            `db:"retired"`
	CreatedOn   dbTime          `db:"created_on"`
	LastUpdated dbTime          `db:"last_updated"`
}

var productColumns = []string{"name", "description", "price", "retired", "created_on", "last_updated"}

const productSelect = `SELECT id, name, description, price, retired, created_on, last_updated FROM products`

type sqlProducts struct{ s *SQLStore }

func (r sqlProducts) Get(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	ps, err := r.load(ctx, productSelect+" WHERE id = ?", int64(id))
	if err != nil || len(ps) == 0 {
		return nil, err
	}
	return ps[0], nil
}

func (r sqlProducts) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return r.load(ctx, productSelect+" ORDER BY id")
}

func (r sqlProducts) GetMany(ctx context.Context, ids []domain.ProductID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.load(ctx, productSelect+" WHERE id IN (?) ORDER BY id", int64s(ids))
}

func (r sqlProducts) GetByCategoryID(ctx context.Context, id domain.CategoryID) ([]*domain.Product, error) {
	return r.load(ctx, productSelect+
		" WHERE id IN (SELECT product_id FROM product_categories WHERE category_id = ?) ORDER BY id", int64(id))
}

func (r sqlProducts) GetByTagID(ctx context.Context, id domain.TagID) ([]*domain.Product, error) {
	return r.load(ctx, productSelect+
		" WHERE id IN (SELECT product_id FROM product_tags WHERE tag_id = ?) ORDER BY id", int64(id))
}

func (r sqlProducts) load(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	var rows []productRow
	if err := r.s.selectIn(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	categories, err := r.s.loadLinks(ctx, "product_categories", "product_id", "category_id", ids)
	if err != nil {
		return nil, err
	}
	tags, err := r.s.loadLinks(ctx, "product_tags", "product_id", "tag_id", ids)
	if err != nil {
		return nil, err
	}

	docs := make([]productDoc, len(rows))
	for i, row := range rows {
		docs[i] = productDoc{
			ID:          domain.ProductID(row.ID),
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Categories:  typedIDs[domain.CategoryID](categories[row.ID]),
			Tags:        typedIDs[domain.TagID](tags[row.ID]),
			Retired:     row.Retired,
			CreatedOn:   time.Time(row.CreatedOn),
			LastUpdated: time.Time(row.LastUpdated),
		}
	}
	return decodeAll(docs, productDoc.toDomain)
}

func (r sqlProducts) AddOrUpdate(ctx context.Context, p *domain.Product) error {
	row := productRow{
		ID:          int64(p.ID()),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		Retired:     p.Retired(),
		CreatedOn:   dbTime(p.CreatedOn()),
		LastUpdated: dbTime(p.LastUpdated()),
	}
	var id int64
	err := r.s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = saveRow(ctx, tx, "products", productColumns, row.ID, row); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "product_categories", "product_id", "category_id", id, int64s(p.Categories())); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "product_tags", "product_id", "tag_id", id, int64s(p.Tags()))
	})
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	if p.ID() == 0 {
		return p.AssignID(domain.ProductID(id))
	}
	return nil
}

// Categories and tags

type groupRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Retired     bool   `db:"retired"`
	CreatedOn   dbTime `db:"created_on"`
	LastUpdated dbTime `db:"last_updated"`
}

var groupColumns = []string{"name", "description", "retired", "created_on", "last_updated"}

// groupTables names the tables of one grouping aggregate.
type groupTables struct {
	table    string
	links    string
	ownerCol string
	// productLinks is the product-side link table of the grouping.
	productLinks string
}

var (
	categoryTables = groupTables{"categories", "category_products", "category_id", "product_categories"}
	tagTables      = groupTables{"tags", "tag_products", "tag_id", "product_tags"}
)

func (s *SQLStore) loadGroups(ctx context.Context, g groupTables, where string, args ...any) ([]groupDoc, error) {
	var rows []groupRow
	query := "SELECT id, name, description, retired, created_on, last_updated FROM " + g.table + where + " ORDER BY id"
	if err := s.selectIn(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", g.table, err)
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	products, err := s.loadLinks(ctx, g.links, g.ownerCol, "product_id", ids)
	if err != nil {
		return nil, err
	}
	docs := make([]groupDoc, len(rows))
	for i, row := range rows {
		docs[i] = groupDoc{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Products:    typedIDs[domain.ProductID](products[row.ID]),
			Retired:     row.Retired,
			CreatedOn:   time.Time(row.CreatedOn),
			LastUpdated: time.Time(row.LastUpdated),
		}
	}
	return docs, nil
}

// groupsByProduct loads the groups whose product set holds any of ids, or
// every group when ids is empty.
func (s *SQLStore) groupsByProduct(ctx context.Context, g groupTables, ids []domain.ProductID) ([]groupDoc, error) {
	if len(ids) == 0 {
		return s.loadGroups(ctx, g, "")
	}
	where := fmt.Sprintf(" WHERE id IN (SELECT %s FROM %s WHERE product_id IN (?))", g.ownerCol, g.links)
	return s.loadGroups(ctx, g, where, int64s(ids))
}

func (s *SQLStore) saveGroup(ctx context.Context, g groupTables, doc groupDoc) (int64, error) {
	row := groupRow{doc.ID, doc.Name, doc.Description, doc.Retired, dbTime(doc.CreatedOn), dbTime(doc.LastUpdated)}
	var id int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = saveRow(ctx, tx, g.table, groupColumns, doc.ID, row); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, g.links, g.ownerCol, "product_id", id, int64s(doc.Products))
	})
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", g.table, err)
	}
	return id, nil
}

type sqlCategories struct{ s *SQLStore }

func (r sqlCategories) Get(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	docs, err := r.s.loadGroups(ctx, categoryTables, " WHERE id = ?", int64(id))
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0].toCategory()
}

func (r sqlCategories) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return r.GetByProductID(ctx)
}

// GetByProductID with no ids returns every category.
func (r sqlCategories) GetByProductID(ctx context.Context, ids ...domain.ProductID) ([]*domain.Category, error) {
	docs, err := r.s.groupsByProduct(ctx, categoryTables, ids)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, groupDoc.toCategory)
}

func (r sqlCategories) Save(ctx context.Context, c *domain.Category) error {
	id, err := r.s.saveGroup(ctx, categoryTables, newCategoryDoc(c))
	if err != nil {
		return err
	}
	if c.ID() == 0 {
		return c.AssignID(domain.CategoryID(id))
	}
	return nil
}

type sqlTags struct{ s *SQLStore }

func (r sqlTags) Get(ctx context.Context, id domain.TagID) (*domain.Tag, error) {
	docs, err := r.s.loadGroups(ctx, tagTables, " WHERE id = ?", int64(id))
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0].toTag()
}

func (r sqlTags) GetAll(ctx context.Context) ([]*domain.Tag, error) {
	return r.GetByProductID(ctx)
}

// GetByProductID with no ids returns every tag.
func (r sqlTags) GetByProductID(ctx context.Context, ids ...domain.ProductID) ([]*domain.Tag, error) {
	docs, err := r.s.groupsByProduct(ctx, tagTables, ids)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, groupDoc.toTag)
}

func (r sqlTags) Save(ctx context.Context, t *domain.Tag) error {
	id, err := r.s.saveGroup(ctx, tagTables, newTagDoc(t))
	if err != nil {
		return err
	}
	if t.ID() == 0 {
		return t.AssignID(domain.TagID(id))
	}
	return nil
}

// Orders

type orderRow struct {
	ID          int64  `db:"id"`
	Status      string `db:"status"`
	CreatedOn   dbTime `db:"created_on"`
	LastUpdated dbTime `db:"last_updated"`
}

var orderColumns = []string{"status", "created_on", "last_updated"}

type lineItemRow struct {
	OrderID            int64           `db:"order_id"`
	LineNo             int             `db:"line_no"`
	ProductID          int64           `db:"product_id"`
	ProductName        string          `db:"product_name"`
	ProductDescription string          `db:"product_description"`
	ProductPrice       decimal.Decimal `db:"product_price"`
	Categories         string          `db:"categories"`
	Tags               string          `db:"tags"`
	Quantity           int             `db:"quantity"`
}

var lineItemColumns = []string{
	"order_id", "line_no", "product_id", "product_name", "product_description",
	"product_price", "categories", "tags", "quantity",
}

func newLineItemRow(orderID int64, lineNo int, li lineItemDoc) (lineItemRow, error) {
	categories, err := json.Marshal(li.Product.Categories)
	if err != nil {
		return lineItemRow{}, err
	}
	tags, err := json.Marshal(li.Product.Tags)
	if err != nil {
		return lineItemRow{}, err
	}
	return lineItemRow{
		OrderID:            orderID,
		LineNo:             lineNo,
		ProductID:          int64(li.Product.ID),
		ProductName:        li.Product.Name,
		ProductDescription: li.Product.Description,
		ProductPrice:       li.Product.Price,
		Categories:         string(categories),
		Tags:               string(tags),
		Quantity:           li.Quantity,
	}, nil
}

func (row lineItemRow) toDoc() (lineItemDoc, error) {
	doc := lineItemDoc{
		Product: domain.ProductSnapshot{
			ID:          domain.ProductID(row.ProductID),
			Name:        row.ProductName,
			Description: row.ProductDescription,
			Price:       row.ProductPrice,
		},
		Quantity: row.Quantity,
	}
	if err := json.Unmarshal([]byte(row.Categories), &doc.Product.Categories); err != nil {
		return lineItemDoc{}, fmt.Errorf("decode line item categories: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Tags), &doc.Product.Tags); err != nil {
		return lineItemDoc{}, fmt.Errorf("decode line item tags: %w", err)
	}
	return doc, nil
}

const orderSelect = `SELECT id, status, created_on, last_updated FROM orders`

type sqlOrders struct{ s *SQLStore }

func (r sqlOrders) Get(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	orders, err := r.load(ctx, orderSelect+" WHERE id = ?", int64(id))
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

func (r sqlOrders) GetAll(ctx context.Context) ([]*domain.Order, error) {
	return r.load(ctx, orderSelect+" ORDER BY id")
}

func (r sqlOrders) load(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	var rows []orderRow
	if err := r.s.selectIn(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var items []lineItemRow
	if err := r.s.selectIn(ctx, &items,
		"SELECT "+strings.Join(lineItemColumns, ", ")+
			" FROM order_line_items WHERE order_id IN (?) ORDER BY order_id, line_no", ids); err != nil {
		return nil, fmt.Errorf("query order line items: %w", err)
	}
	byOrder := make(map[int64][]lineItemDoc, len(rows))
	for _, item := range items {
		doc, err := item.toDoc()
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", item.OrderID, err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], doc)
	}

	docs := make([]orderDoc, len(rows))
	for i, row := range rows {
		docs[i] = orderDoc{
			ID:          domain.OrderID(row.ID),
			Status:      row.Status,
			LineItems:   byOrder[row.ID],
			CreatedOn:   time.Time(row.CreatedOn),
			LastUpdated: time.Time(row.LastUpdated),
		}
	}
	return decodeAll(docs, orderDoc.toDomain)
}

func (r sqlOrders) Save(ctx context.Context, o *domain.Order) error {
	doc := newOrderDoc(o)
	row := orderRow{int64(doc.ID), doc.Status, dbTime(doc.CreatedOn), dbTime(doc.LastUpdated)}
	var id int64
	err := r.s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = saveRow(ctx, tx, "orders", orderColumns, row.ID, row); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM order_line_items WHERE order_id = ?"), id); err != nil {
			return err
		}
		ins := insertSQL("order_line_items", lineItemColumns)
		for i, li := range doc.LineItems {
			item, err := newLineItemRow(id, i, li)
			if err != nil {
				return err
			}
			if _, err := tx.NamedExecContext(ctx, ins, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if o.ID() == 0 {
		return o.AssignID(domain.OrderID(id))
	}
	return nil
}

// Payments

type paymentRow struct {
	ID         int64           `db:"id"`
	OrderID    int64           `db:"order_id"`
	Amount     decimal.Decimal `db:"amount"`
	OrderTotal decimal.Decimal `db:"order_total"`
	PaidOn     dbTime          `db:"paid_on"`
}

var paymentColumns = []string{"order_id", "amount", "order_total", "paid_on"}

const paymentSelect = `SELECT id, order_id, amount, order_total, paid_on FROM payments`

type sqlPayments struct{ s *SQLStore }

func (r sqlPayments) Get(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	ps, err := r.load(ctx, paymentSelect+" WHERE id = ?", int64(id))
	if err != nil || len(ps) == 0 {
		return nil, err
	}
	return ps[0], nil
}

func (r sqlPayments) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	return r.load(ctx, paymentSelect+" ORDER BY id")
}

func (r sqlPayments) load(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	var rows []paymentRow
	if err := r.s.selectIn(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	docs := make([]paymentDoc, len(rows))
	for i, row := range rows {
		docs[i] = paymentDoc{
			ID:         domain.PaymentID(row.ID),
			OrderID:    domain.OrderID(row.OrderID),
			Amount:     row.Amount,
			OrderTotal: row.OrderTotal,
			PaidOn:     time.Time(row.PaidOn),
		}
	}
	return decodeAll(docs, paymentDoc.toDomain)
}

// Add records a new payment. Payments are never updated.
func (r sqlPayments) Add(ctx context.Context, p *domain.Payment) error {
	row := paymentRow{int64(p.ID()), int64(p.OrderID()), p.Amount(), p.OrderTotal(), dbTime(p.PaidOn())}
	columns := paymentColumns
	if row.ID != 0 {
		columns = append([]string{"id"}, columns...)
	}
	var id int64
	err := r.s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, insertSQL("payments", columns), row)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	if p.ID() == 0 {
		return p.AssignID(domain.PaymentID(id))
	}
	return nil
}
