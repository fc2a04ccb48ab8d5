// Package catalog owns the in-memory list of demo stocks that wallets are invested into.
//
// The catalog is process-wide and not persisted: it is reset on restart. All reads and writes
// go through a single mutex, and the random source used for picking and for price moves is
// only touched while that mutex is held.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"roundup/internal/models"
	"roundup/internal/money"

	"github.com/BurntSushi/toml"
)

// MaxDailyMove bounds the profit/loss change per tick, in percentage points.
const MaxDailyMove = 5.0

var (
	ErrEmptyCatalog   = errors.New("catalog is empty")
	ErrDuplicateStock = errors.New("duplicate stock name")
	ErrInvalidStock   = errors.New("invalid stock entry")
)

// Rand is the subset of *rand.Rand the catalog needs. Tests pass a scripted implementation.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type Catalog struct {
	mu       sync.Mutex
	stocks   []models.Stock
	rng      Rand
	priceCap float64
}

func Default() []models.Stock {
	return []models.Stock{
		{Name: "Stock A", Price: 10.00, ProfitLoss: 2.0},
		{Name: "Stock B", Price: 8.50, ProfitLoss: -1.5},
		{Name: "Stock C", Price: 15.30, ProfitLoss: 5.0},
		{Name: "Stock D", Price: 12.75, ProfitLoss: -2.0},
		{Name: "Stock E", Price: 6.80, ProfitLoss: 3.5},
	}
}

// New copies stocks into a catalog. A nil rng is replaced by a time-seeded source and a
// non-positive priceCap by 20.00.
func New(stocks []models.Stock, rng Rand, priceCap float64) (*Catalog, error) {
	if err := validate(stocks); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if priceCap <= 0 {
		priceCap = 20.00
	}
	owned := make([]models.Stock, len(stocks))
	copy(owned, stocks)
	return &Catalog{stocks: owned, rng: rng, priceCap: priceCap}, nil
}

func (c *Catalog) Snapshot() []models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Catalog) Lookup(name string) (models.Stock, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, stock := range c.stocks {
		if stock.Name == name {
			return stock, true
		}
	}
	return models.Stock{}, false
}

// Pick returns a copy of one stock chosen uniformly at random.
func (c *Catalog) Pick() (models.Stock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stocks) == 0 {
		return models.Stock{}, ErrEmptyCatalog
	}
	return c.stocks[c.rng.Intn(len(c.stocks))], nil
}

// Tick moves every stock's profit/loss by a uniform delta in [-MaxDailyMove, +MaxDailyMove]
// and reprices it from the new percentage. Prices never exceed the cap and, once capped, only
// come down through a negative profit/loss.
func (c *Catalog) Tick() []models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.stocks {
		delta := (c.rng.Float64()*2 - 1) * MaxDailyMove
		c.stocks[i].ProfitLoss += delta
		c.stocks[i].Price = nextPrice(c.stocks[i].Price, c.stocks[i].ProfitLoss, c.priceCap)
	}
	return c.snapshotLocked()
}

func (c *Catalog) snapshotLocked() []models.Stock {
	out := make([]models.Stock, len(c.stocks))
	copy(out, c.stocks)
	return out
}

func nextPrice(price, profitLoss, priceCap float64) float64 {
	next := math.Min(price*(1+profitLoss/100), priceCap)
	if next < 0 {
		next = 0
	}
	return money.Round2(next)
}

type catalogFile struct {
	Stocks []models.Stock `toml:"stock"`
}

// LoadFile reads a catalog seed from TOML:
//
//	[[stock]]
//	name = "Stock A"
//	price = 10.00
//	profit_loss = 2.0
func LoadFile(path string) ([]models.Stock, error) {
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := validate(file.Stocks); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return file.Stocks, nil
}

func validate(stocks []models.Stock) error {
	if len(stocks) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(stocks))
	for _, stock := range stocks {
		if stock.Name == "" || stock.Price < 0 || !money.IsFinite(stock.Price) || !money.IsFinite(stock.ProfitLoss) {
			return fmt.Errorf("%w: %q", ErrInvalidStock, stock.Name)
		}
		if _, ok := seen[stock.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateStock, stock.Name)
		}
		seen[stock.Name] = struct{}{}
	}
	return nil
}
