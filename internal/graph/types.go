package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NodeType represents the type of node in the knowledge graph.
type NodeType string

const (
	NodeTypeStock     NodeType = "stock"
	NodeTypeSector    NodeType = "sector"
	NodeTypeIndex     NodeType = "index"
	NodeTypeIndicator NodeType = "market_indicator"
	NodeTypeNews      NodeType = "news"
)

// String returns the string representation of NodeType.
func (nt NodeType) String() string {
	return string(nt)
}

// IsValid checks if the NodeType is a valid value.
func (nt NodeType) IsValid() bool {
	switch nt {
	case NodeTypeStock, NodeTypeSector, NodeTypeIndex, NodeTypeIndicator, NodeTypeNews:
		return true
	default:
		return false
	}
}

// Relation represents the typed relationship carried by an edge.
type Relation string

const (
	RelationBelongsTo    Relation = "belongs_to"
	RelationComponentOf  Relation = "component_of"
	RelationIndicates    Relation = "indicates"
	RelationMentions     Relation = "mentions"
	RelationPeerOfSector Relation = "peer_of_sector"
)

// String returns the string representation of Relation.
func (r Relation) String() string {
	return string(r)
}

// IsValid checks if the Relation is a valid value.
func (r Relation) IsValid() bool {
	switch r {
	case RelationBelongsTo, RelationComponentOf, RelationIndicates,
		RelationMentions, RelationPeerOfSector:
		return true
	default:
		return false
	}
}

// StockAttrs holds the attributes of a stock node. Numeric fields are
// pointers: nil means the feed did not report the value and downstream
// consumers must not substitute a default for it.
type StockAttrs struct {
	Name             string     `json:"name,omitempty"`
	Sector           string     `json:"sector,omitempty"`
	Price            *float64   `json:"price,omitempty"`
	ChangePercent    *float64   `json:"change_percent,omitempty"`
	Volume           *int64     `json:"volume,omitempty"`
	MarketCap        *float64   `json:"market_cap,omitempty"`
	PERatio          *float64   `json:"pe_ratio,omitempty"`
	PBRatio          *float64   `json:"pb_ratio,omitempty"`
	DividendYield    *float64   `json:"dividend_yield,omitempty"`
	Beta             *float64   `json:"beta,omitempty"`
	FiftyTwoWeekHigh *float64   `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64   `json:"fifty_two_week_low,omitempty"`
	RSI              *float64   `json:"rsi,omitempty"`
	MACDHistogram    *float64   `json:"macd_histogram,omitempty"`
	SMA20            *float64   `json:"sma_20,omitempty"`
	SMA50            *float64   `json:"sma_50,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
}

// SectorAttrs holds the attributes of a sector node. Aggregates are
// filled lazily as member stocks are discovered during the build.
type SectorAttrs struct {
	Name          string   `json:"name"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
	StockCount    int      `json:"stock_count"`
}

// IndexAttrs holds the attributes of a broad-market index node.
type IndexAttrs struct {
	Name string `json:"name"`
}

// IndicatorAttrs holds the attributes of the market breadth singleton.
type IndicatorAttrs struct {
	Advances            int       `json:"advances"`
	Declines            int       `json:"declines"`
	AdvanceDeclineRatio float64   `json:"advance_decline_ratio"`
	Sentiment           string    `json:"sentiment,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// NewsAttrs holds the attributes of a news node.
type NewsAttrs struct {
	Title     string    `json:"title"`
	Sentiment string    `json:"sentiment,omitempty"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source,omitempty"`
}

// Node is one entity in the knowledge graph. Exactly one of the attribute
// variants is non-nil, selected by Type; the open property bag of earlier
// designs is deliberately gone.
type Node struct {
	Key  string   `json:"key"`
	Type NodeType `json:"type"`

	Stock     *StockAttrs     `json:"stock,omitempty"`
	Sector    *SectorAttrs    `json:"sector,omitempty"`
	Index     *IndexAttrs     `json:"index,omitempty"`
	Indicator *IndicatorAttrs `json:"indicator,omitempty"`
	News      *NewsAttrs      `json:"news,omitempty"`
}

// Name returns the display name carried by the node's attribute variant.
func (n *Node) Name() string {
	switch n.Type {
	case NodeTypeStock:
		if n.Stock != nil && n.Stock.Name != "" {
			return n.Stock.Name
		}
	case NodeTypeSector:
		if n.Sector != nil {
			return n.Sector.Name
		}
	case NodeTypeIndex:
		if n.Index != nil {
			return n.Index.Name
		}
	case NodeTypeNews:
		if n.News != nil {
			return n.News.Title
		}
	}
	return n.Key
}

// BreadthKey is the key of the singleton market-breadth node.
const BreadthKey = "market_breadth"

// Fixed broad-market index node keys.
const (
	IndexNifty  = "NIFTY50"
	IndexSensex = "SENSEX"
)

// NewsKey derives a stable node key for a news item from its normalized
// title, publication date and source. The same article ingested twice maps
// to the same node; a retitled or re-sourced article gets a new one.
func NewsKey(title string, date time.Time, source string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	if !date.IsZero() {
		h.Write([]byte(date.UTC().Format("2006-01-02")))
	}
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(source)))
	return "news:" + hex.EncodeToString(h.Sum(nil)[:12])
}
