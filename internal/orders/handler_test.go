package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/events"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func TestOrderLifecycle(t *testing.T) {
	db := dbtest.Open(t)

	product := models.Product{Name: "Bella Headboard", Kind: models.KindBella}
	if err := db.Create(&product).Error; err != nil {
		t.Fatal(err)
	}

	pub := &recordingPublisher{}
	h := NewHandler(pub)
	app := fiber.New()
	app.Post("/orders", h.Create())
	app.Get("/orders", h.List())
	app.Get("/orders/:id", h.Get())
	app.Delete("/orders/:id", h.Delete())

	do := func(method, path, body string) (int, []byte) {
		t.Helper()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, buf.Bytes()
	}

	pid := strconv.FormatUint(uint64(product.ID), 10)
	body := `{"dueDate":"2026-11-30","items":[
		{"productId":` + pid + `,"sizeName":"Queen","fabricName":"Velvet","colorName":"Gold","quantity":2},
		{"productId":` + pid + `,"sizeName":"Double","quantity":0},
		{"productId":` + pid + `,"sizeName":"Single","quantity":-1}
	]}`
	code, raw := do("POST", "/orders", body)
	if code != fiber.StatusCreated {
		t.Fatalf("create = %d (%s)", code, raw)
	}

	var created models.Order
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}
	if len(created.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(created.Items))
	}
	it := created.Items[0]
	if it.Quantity != 2 || it.Size == nil || it.Size.Name != "Queen" || it.Color == nil || it.Color.Name != "Gold" {
		t.Errorf("item = %+v", it)
	}

	var stored int64
	db.Model(&models.OrderItem{}).Count(&stored)
	if stored != 1 {
		t.Errorf("stored items = %d, want 1", stored)
	}

	if code, _ := do("POST", "/orders", `{"dueDate":"tomorrow","items":[]}`); code != fiber.StatusBadRequest {
		t.Errorf("bad date = %d", code)
	}
	if code, _ := do("POST", "/orders", `{"dueDate":"2026-11-30","items":[{"productId":999,"quantity":1}]}`); code != fiber.StatusBadRequest {
		t.Errorf("unknown product = %d", code)
	}

	path := "/orders/" + strconv.FormatUint(uint64(created.ID), 10)
	if code, _ := do("GET", path, ""); code != fiber.StatusOK {
		t.Errorf("get = %d", code)
	}
	if code, _ := do("DELETE", path, ""); code != fiber.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	if code, _ := do("GET", path, ""); code != fiber.StatusNotFound {
		t.Errorf("get after delete = %d", code)
	}

	want := []string{events.TopicOrderCreated, events.TopicOrderDeleted}
	if len(pub.topics) != 2 || pub.topics[0] != want[0] || pub.topics[1] != want[1] {
		t.Errorf("published = %v, want %v", pub.topics, want)
	}
}
