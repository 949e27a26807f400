// Package catalog holds the static product and price definitions. A
// Catalog is immutable after construction; price changes are rolled out
// by building a new Catalog and swapping the whole value, so readers
// never observe a partially updated price table.
package catalog

import "errors"

// ErrProductNotFound is returned when a product ID has no catalog entry
var ErrProductNotFound = errors.New("product not found")

// Entry describes one purchasable product. Price is in integer cents.
type Entry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Desc  string `json:"desc"`
}

// Snapshot is a render-ready view of all three price tables
type Snapshot struct {
	Cards       []Entry                     `json:"cards"`
	Agents      []Entry                     `json:"agents"`
	AgentPrices map[string]map[string]int64 `json:"agent_prices"`
}

// Catalog indexes the direct-purchase card tiers, the agent tiers and
// the agent-resale price matrix.
type Catalog struct {
	cards  []Entry
	agents []Entry
	resale map[string]map[string]int64
	byID   map[string]Entry
}

// New builds a catalog from the given tables. Entries keep their slice
// order for display purposes.
func New(cards, agents []Entry, resale map[string]map[string]int64) *Catalog {
	byID := make(map[string]Entry, len(cards)+len(agents))
	for _, e := range cards {
		byID[e.ID] = e
	}
	for _, e := range agents {
		byID[e.ID] = e
	}
	return &Catalog{cards: cards, agents: agents, resale: resale, byID: byID}
}

// Default returns the stock price list
func Default() *Catalog {
	cards := []Entry{
		{ID: "day", Name: "Day Card", Price: 700, Desc: "24h access"},
		{ID: "week", Name: "Week Card", Price: 3000, Desc: "7-day access"},
		{ID: "month", Name: "Month Card", Price: 6000, Desc: "30-day access"},
		{ID: "season", Name: "Season Card", Price: 12000, Desc: "90-day access"},
	}
	agents := []Entry{
		{ID: "normal", Name: "Normal Agent", Price: 22000, Desc: "includes permanent card"},
		{ID: "total", Name: "Total Agent", Price: 35000, Desc: "includes permanent card"},
		{ID: "core", Name: "Core Agent", Price: 70000, Desc: "card pickup not included"},
	}
	resale := map[string]map[string]int64{
		"normal": {"day": 500, "week": 2000, "month": 5500, "season": 11500},
		"total":  {"day": 400, "week": 1700, "month": 4500, "season": 10000},
		"core":   {"day": 300, "week": 1000, "month": 2000, "season": 4000},
	}
	return New(cards, agents, resale)
}

// PriceOf returns the direct-purchase price for a product
func (c *Catalog) PriceOf(productID string) (int64, error) {
	e, ok := c.byID[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return e.Price, nil
}

// Get returns the full entry for a product
func (c *Catalog) Get(productID string) (Entry, error) {
	e, ok := c.byID[productID]
	if !ok {
		return Entry{}, ErrProductNotFound
	}
	return e, nil
}

// ResalePrice returns the per-card price an agent tier pays
func (c *Catalog) ResalePrice(agentID, cardID string) (int64, error) {
	row, ok := c.resale[agentID]
	if !ok {
		return 0, ErrProductNotFound
	}
	price, ok := row[cardID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return price, nil
}

// Snapshot returns a copy of all three tables for rendering
func (c *Catalog) Snapshot() Snapshot {
	cards := make([]Entry, len(c.cards))
	copy(cards, c.cards)
	agents := make([]Entry, len(c.agents))
	copy(agents, c.agents)
	resale := make(map[string]map[string]int64, len(c.resale))
	for agent, row := range c.resale {
		cp := make(map[string]int64, len(row))
		for card, price := range row {
			cp[card] = price
		}
		resale[agent] = cp
	}
	return Snapshot{Cards: cards, Agents: agents, AgentPrices: resale}
}
