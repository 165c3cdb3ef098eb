package main

import (
	"crypto/sha256"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "ticket-service-secret-key"
	defaultLatencyMs = "100"
)

type cardRequest struct {
	CardNumber string `json:"ghana_card"`
}

type issueRequest struct {
	UserID   int64 `json:"userId"`
	TicketID int64 `json:"ticketId"`
}

type paymentRequest struct {
	Method string `json:"method"`
}

type identity struct {
	ID          int64  `json:"id"`
	CardNumber  string `json:"ghana_card"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ticketType struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type ticket struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`

	owner int64
}

type adminTicket struct {
	ticket
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

	catalog = []ticketType{
		{ID: 1, Title: "Standard", Price: 50},
		{ID: 2, Title: "Over Speeding", Price: 1},
		{ID: 3, Title: "Reckless Driving", Price: 200},
	}
)

// Magic card numbers let e2e runs steer the outcome:
//
//	GHA-REJECT...   verification is declined
//	GHA-DOWN...     the service answers 500
//
// A ticket whose price ends in .13 is declined at payment.
type registry struct {
	mu         sync.Mutex
	identities map[string]identity
	byID       map[int64]identity
	tickets    []*ticket
	nextTicket int64
}

func newRegistry() *registry {
	return &registry{
		identities: map[string]identity{},
		byID:       map[int64]identity{},
		nextTicket: 100,
	}
}

func main() {
	port := getEnv("PORT", defaultPort)
	reg := newRegistry()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /ticket-system/user-validate", reg.handleVerify)
	mux.HandleFunc("POST /ticket-system/validate", reg.handleVerify)
	mux.HandleFunc("POST /ticket-system/generate-ticket", reg.handleIssue)
	mux.HandleFunc("GET /ticket-system/get-all-tickets", reg.handleCatalog)
	mux.HandleFunc("GET /ticket-system/get-user-tickets/{id}", reg.handleUserTickets)
	mux.HandleFunc("GET /ticket-system/get-all-users-with-tickets", reg.handleAllTickets)
	mux.HandleFunc("POST /ticket-system/make-payment/{id}", reg.handlePayment)

	log.Printf("Mock ticket service starting on port %s", port)
	log.Printf("Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, withAPIKey(withLatency(mux))); err != nil {
		log.Fatal(err)
	}
}

func withLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if latencyMs > 0 {
			time.Sleep(time.Duration(latencyMs) * time.Millisecond)
		}
		next.ServeHTTP(w, r)
	})
}

func withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" && r.Header.Get("X-API-Key") != apiKey {
			send(w, http.StatusUnauthorized, envelope{Message: "Invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	send(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"service": "ticket-service"}})
}

func (g *registry) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CardNumber) == "" {
		send(w, http.StatusBadRequest, envelope{Message: "ghana_card is required"})
		return
	}
	card := strings.ToUpper(strings.TrimSpace(req.CardNumber))
	switch {
	case strings.HasPrefix(card, "GHA-DOWN"):
		send(w, http.StatusInternalServerError, envelope{Message: "registry unavailable"})
		return
	case strings.HasPrefix(card, "GHA-REJECT"):
		send(w, http.StatusOK, envelope{Message: "Ghana card not found"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.identities[card]
	if !ok {
		rec = generateIdentity(card, int64(len(g.identities)+1))
		g.identities[card] = rec
		g.byID[rec.ID] = rec
	}
	send(w, http.StatusOK, envelope{Success: true, Message: "Ghana card verified successfully", Data: rec})
}

func (g *registry) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		send(w, http.StatusBadRequest, envelope{Message: "invalid body"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.byID[req.UserID]; !ok {
		send(w, http.StatusNotFound, envelope{Message: "User not found"})
		return
	}
	tt, ok := findType(req.TicketID)
	if !ok {
		send(w, http.StatusUnprocessableEntity, envelope{Message: "ticketId must be a known ticket type"})
		return
	}
	g.nextTicket++
	g.tickets = append(g.tickets, &ticket{ID: g.nextTicket, Title: tt.Title, Price: tt.Price, Status: "pending", owner: req.UserID})
	send(w, http.StatusCreated, envelope{Success: true, Message: "Ticket successfully generated!"})
}

func (g *registry) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	send(w, http.StatusOK, envelope{Success: true, Data: catalog})
}

func (g *registry) handleUserTickets(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		send(w, http.StatusBadRequest, envelope{Message: "invalid user id"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := []ticket{}
	for _, t := range g.tickets {
		if t.owner == userID {
			out = append(out, *t)
		}
	}
	send(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (g *registry) handleAllTickets(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]adminTicket, 0, len(g.tickets))
	for _, t := range g.tickets {
		owner := g.byID[t.owner]
		out = append(out, adminTicket{ticket: *t, FirstName: owner.FirstName, LastName: owner.LastName, Email: owner.Email})
	}
	send(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (g *registry) handlePayment(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		send(w, http.StatusBadRequest, envelope{Message: "invalid ticket id"})
		return
	}
	var req paymentRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Method != "momo" && req.Method != "visa" {
		send(w, http.StatusUnprocessableEntity, envelope{Message: "Unsupported payment method"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tickets {
		if t.ID != ticketID {
			continue
		}
		switch {
		case t.Status == "paid":
			send(w, http.StatusConflict, envelope{Message: "Ticket already paid"})
		case int(t.Price*100)%100 == 13:
			send(w, http.StatusOK, envelope{Message: "Card declined"})
		default:
			t.Status = "paid"
			send(w, http.StatusOK, envelope{Success: true, Message: "Payment successful!"})
		}
		return
	}
	send(w, http.StatusNotFound, envelope{Message: "Ticket not found"})
}

func findType(id int64) (ticketType, bool) {
	for _, tt := range catalog {
		if tt.ID == id {
			return tt, true
		}
	}
	return ticketType{}, false
}

// generateIdentity derives a stable profile from the card number.
func generateIdentity(card string, id int64) identity {
	hash := sha256.Sum256([]byte(card))
	n := int(hash[0])

	firstNames := []string{"Ama", "Kojo", "Esi", "Kwame", "Akosua", "Yaw", "Abena", "Kofi"}
	lastNames := []string{"Mensah", "Owusu", "Addo", "Boateng", "Asante", "Osei", "Appiah", "Darko"}
	first := firstNames[n%len(firstNames)]
	last := lastNames[(n*3)%len(lastNames)]
	now := time.Now().UTC().Format(time.RFC3339)

	return identity{
		ID:          id,
		CardNumber:  card,
		FirstName:   first,
		LastName:    last,
		Email:       strings.ToLower(first+"."+last) + "@example.com",
		PhoneNumber: "024" + strconv.Itoa(1000000+n*3571%9000000),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func send(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
	if !body.Success {
		log.Printf("declined: %d - %s", code, body.Message)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
