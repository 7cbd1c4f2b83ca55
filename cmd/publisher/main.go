// Command publisher sends a catalog refresh notification read from stdin.
package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/storefront/internal/domain"
)

func main() {
	clusterID := getenv("STAN_CLUSTER_ID", "storefront-cluster")
	clientID := getenv("STAN_PUB_ID", "storefront-publisher")
	natsURL := getenv("NATS_URL", "nats://localhost:4223")
	subject := getenv("STAN_SUBJECT", "catalog.refresh")

	var notice domain.RefreshNotice
	dec := json.NewDecoder(os.Stdin)
	if err := dec.Decode(&notice); err != nil && !errors.Is(err, io.EOF) {
		log.Fatalf("read json from stdin: %v", err)
	}
	if notice.RequestedAt.IsZero() {
		notice.RequestedAt = time.Now().UTC()
	}
	b, err := json.Marshal(notice)
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}

	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		log.Fatalf("stan connect: %v", err)
	}
	defer sc.Close()

	if err := sc.Publish(subject, b); err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published %d bytes to %s", len(b), subject)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
