package bot

import (
	"bytes"
	"encoding/json"
	"log"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
)

// Archive indexes placed orders into Elasticsearch for back-office search.
// Optional: nil when ES_ADDR is not configured, and checkout never depends
// on it; indexing failures are logged, not surfaced.
type Archive struct {
	es    *elasticsearch.Client
	index string
}

// NewArchive builds the optional order archive from the environment.
// Returns nil (archiving disabled) when ES_ADDR is unset or the client
// cannot be constructed.
func NewArchive() *Archive {
	addr := os.Getenv("ES_ADDR")
	if addr == "" {
		return nil
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  os.Getenv("ES_USER"),
		Password:  os.Getenv("ES_PASS"),
	})
	if err != nil {
		log.Printf("archive: elasticsearch disabled: %v", err)
		return nil
	}
	index := os.Getenv("ES_ORDER_INDEX")
	if index == "" {
		index = "shopbot-orders"
	}
	log.Printf("archive: indexing orders to %s/%s", addr, index)
	return &Archive{es: es, index: index}
}

// IndexOrder stores one order document.
func (a *Archive) IndexOrder(o Order) {
	body, err := json.Marshal(o)
	if err != nil {
		log.Printf("archive: marshal order %s: %v", o.ID, err)
		return
	}
	res, err := a.es.Index(a.index, bytes.NewReader(body),
		a.es.Index.WithDocumentID(o.ID),
	)
	if err != nil {
		log.Printf("archive: index order %s: %v", o.ID, err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Printf("archive: index order %s: %s", o.ID, res.String())
	}
}
