package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestPagesRender(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))

	resp := b.get("/")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home: %d %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Featured deals") || !strings.Contains(body, "MailForge Pro") {
		t.Fatalf("home missing featured deals: %s", body)
	}

	resp = b.get("/browse?category=Marketing&sort=price-low")
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("browse: %d", resp.StatusCode)
	}
	if !strings.Contains(body, "MailForge Pro") || strings.Contains(body, "TaskPilot") {
		t.Fatalf("category filter not applied: %s", body)
	}
	if b.cookies["sid"] == "" {
		t.Fatal("browse should issue a session cookie")
	}

	resp = b.get("/deals/1")
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deal: %d", resp.StatusCode)
	}
	for _, want := range []string{"MailForge Pro", "Team License (5 users)", "Reviews", `name="csrf"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("deal page missing %q", want)
		}
	}
}

func TestDealNotFoundOffersRetry(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	for _, path := range []string{"/deals/9999", "/deals/abc"} {
		resp := b.get(path)
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, "no longer available") || !strings.Contains(body, "Try again") {
			t.Fatalf("%s: missing friendly message: %s", path, body)
		}
	}
}

func TestBrowseBadFiltersFallBack(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	q := url.Values{"min_price": {"-1"}, "max_price": {"lots"}, "sort": {"bogus"}}
	resp := b.get("/browse?" + q.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected page with defaults, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "MailForge Pro") {
		t.Fatalf("default filters should list the catalog: %s", body)
	}
}

func TestBrowseRejectsUnsearchableQuery(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	for _, search := range []string{"<script>", "zzzz/nomatch", "50% off nomatch"} {
		var resp *http.Response
		logs := captureLogs(t, func() {
			resp = b.get("/browse?" + url.Values{"search": {search}}.Encode())
		})
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", search, resp.StatusCode)
		}
		if !strings.Contains(body, "Enter a valid keyword") || strings.Contains(body, "MailForge Pro") {
			t.Fatalf("%q: expected an error instead of the catalog: %s", search, body)
		}
		if !hasAction(logs, "validation.fail") {
			t.Fatalf("%q: expected validation.fail log, got %+v", search, logs)
		}
	}
}

func TestCartFormFlow(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))

	b.get("/cart")
	tok := b.cookies["csrf_"]
	if tok == "" {
		t.Fatal("csrf token missing")
	}

	resp := b.postForm("/cart", "csrf="+tok+"&dealId=1&tier=team&qty=2")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: expected redirect, got %d", resp.StatusCode)
	}

	body := readBody(t, b.get("/cart"))
	for _, want := range []string{"Added to cart!", "MailForge Pro", "Team License (5 users)", "Continue shopping"} {
		if !strings.Contains(body, want) {
			t.Fatalf("cart page missing %q: %s", want, body)
		}
	}
	// the flash is shown once
	if strings.Contains(readBody(t, b.get("/cart")), "Added to cart!") {
		t.Fatal("flash shown twice")
	}

	b.postForm("/cart", "csrf="+tok+"&dealId=1&tier=team&qty=1")
	if body := readBody(t, b.get("/cart")); !strings.Contains(body, "Quantity updated in cart!") {
		t.Fatalf("merge notice missing: %s", body)
	}

	b.postForm("/cart/update", "csrf="+tok+"&dealId=1&tier=team&qty=0")
	if body := readBody(t, b.get("/cart")); !strings.Contains(body, "Removed from cart") || !strings.Contains(body, "Your cart is empty") {
		t.Fatalf("update to zero should remove the line: %s", body)
	}

	b.postForm("/cart", "csrf="+tok+"&dealId=2")
	b.postForm("/cart/clear", "csrf="+tok)
	if body := readBody(t, b.get("/cart")); !strings.Contains(body, "Cart cleared") {
		t.Fatalf("clear notice missing: %s", body)
	}
}

func TestCartContinueShoppingKeepsFilters(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	b.get("/browse?category=Design&sort=rating")

	body := readBody(t, b.get("/cart"))
	if !strings.Contains(body, "/browse?category=Design&amp;sort=rating") {
		t.Fatalf("continue link lost the browse query: %s", body)
	}
}

func TestCartFormRejectsBadInput(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	b.get("/cart")
	tok := b.cookies["csrf_"]

	if resp := b.postForm("/cart", "csrf="+tok+"&dealId=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad dealId: expected 400, got %d", resp.StatusCode)
	}
	if resp := b.postForm("/cart", "csrf="+tok+"&dealId=1&tier=enterprise"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad tier: expected 400, got %d", resp.StatusCode)
	}
}

func TestCartFormRequiresCSRF(t *testing.T) {
	b := newBrowser(t, newTestApp(t, ""))
	var status int
	logs := captureLogs(t, func() {
		status = b.postForm("/cart", "dealId=1").StatusCode
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", status)
	}
	if !hasAction(logs, "csrf.fail") {
		t.Fatalf("expected csrf.fail log, got %+v", logs)
	}
}
