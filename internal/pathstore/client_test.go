package pathstore_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dgallion1/hsspgest/internal/pathstore"
	"github.com/dgallion1/hsspgest/internal/pathstore/pathstoretest"
)

func TestClient_NodeLifecycle(t *testing.T) {
	srv := pathstoretest.NewServer("k")
	defer srv.Close()
	c := pathstore.NewClient(srv.URL, "k")
	defer c.Close()
	ctx := context.Background()

	if err := c.PutNode(ctx, "a/b", pathstore.NodeRequest{Value: map[string]int{"n": 1}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.PutNode(ctx, "a/c", pathstore.NodeRequest{Value: "x"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	node, err := c.GetNode(ctx, "a/b")
	if err != nil || node == nil {
		t.Fatalf("get: node=%v err=%v", node, err)
	}
	var v struct{ N int }
	if err := node.Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.N != 1 {
		t.Errorf("expected n=1, got %d", v.N)
	}

	nodes, err := c.ListChildren(ctx, "a", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 children, got %d", len(nodes))
	}
	nodes, err = c.ListChildren(ctx, "a", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Key != "a/b" {
		t.Errorf("expected only a/b with limit 1, got %+v", nodes)
	}

	if err := c.DeleteNode(ctx, "a/b", false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if node, err := c.GetNode(ctx, "a/b"); err != nil || node != nil {
		t.Errorf("expected missing node after delete, got %v, %v", node, err)
	}
	if err := c.DeleteNode(ctx, "a/b", false); err != nil {
		t.Errorf("expected deleting a missing node to succeed, got %v", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := pathstoretest.NewServer("k")
	defer srv.Close()
	ctx := context.Background()

	_, err := pathstore.NewClient(srv.URL, "bad").GetNode(ctx, "a")
	var se *pathstore.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized || se.Temporary() {
		t.Errorf("expected permanent 401, got %d (temporary=%v)", se.StatusCode, se.Temporary())
	}

	srv.FailNext(1)
	err = pathstore.NewClient(srv.URL, "k").PutNode(ctx, "a", pathstore.NodeRequest{Value: 1})
	if !errors.As(err, &se) || !se.Temporary() {
		t.Errorf("expected temporary error for 503, got %v", err)
	}
}
