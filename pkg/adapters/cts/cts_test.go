package cts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/aretw0/concierge/pkg/adapters/cts"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hotelJSON = `{
	"id": 42, "name": "Hotel Plaza", "town_id": 51, "address": "Av. Providencia 1",
	"town": {"name": "Santiago"}, "phone": "+56 2", "checkin": "15:00", "checkout": "12:00",
	"category": {"name": "Boutique", "rating": 4},
	"policies_description": "Sin mascotas", "policies_description_en": "No pets",
	"ammenities": [{"name": "Wifi"}, {"name": "Pool"}],
	"cancellation": 48,
	"images": [{"url": "http://img/1.jpg", "is_primary": true}],
	"availability": [
		{"currency_id": 2, "price_value_with_tax": 120, "price_value": 100, "price_base": 90, "markup": [5],
		 "details": [{"date": "2025-03-01", "total": 100}],
		 "rooms": [{"roomtype_id": 7, "roomtype": "Double", "rateplan_name": "Flex", "adults": 2,
		            "cancellation_type": "Free", "mealplan": "Breakfast", "bed_options": "1 King", "size": "30m2",
		            "details": [{"inventory_id": 9, "rate_id": 3}]}]},
		{"currency_id": 2, "price_value_with_tax": 100, "price_value": 80,
		 "rooms": [{"roomtype_id": 7, "roomtype": "Double"}, {"roomtype_id": 8, "roomtype": "Single", "adults": 1}]}
	]
}`

const servicesJSON = `[{
	"id": 300, "city": "SANTIAGO",
	"glosas": {"g_text_es": "Viña del Mar", "g_text_en": "Vina del Mar tour"},
	"descriptions": {"d_text_es": "Paseo costero", "d_text_en": "Coastal tour"},
	"concepts": ["Lunch", "Guide"],
	"services": [
		{"service_code": 5001, "sale_price": 50000, "currency": "CLP", "service_duration": "8h",
		 "meeting_point": "Hotel lobby", "city": "santiago", "allow_childs": true, "is_regular": true,
		 "travel_date": "2025-03-02", "cancellation_date": "2025-03-01", "language": ["Español", "Inglés"],
		 "guide": "Bilingual", "adults": 2, "children": 0},
		{"service_code": 5002, "sale_price": 90000, "currency": "CLP", "is_regular": false, "city": "santiago"}
	]
}]`

type apiRecorder struct {
	mu       sync.Mutex
	auth     []string
	queries  []string
	bodies   map[string]map[string]any
	failWith int
}

func (a *apiRecorder) fail(code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failWith = code
}

func (a *apiRecorder) record(r *http.Request) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auth = append(a.auth, r.Header.Get("Authorization"))
	a.queries = append(a.queries, r.URL.RawQuery)
	if r.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			a.bodies[r.Method+" "+r.URL.Path] = body
		}
	}
	return a.failWith
}

func (a *apiRecorder) body(key string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[key]
}

func newAPI(t *testing.T) (*cts.Client, *apiRecorder) {
	t.Helper()
	rec := &apiRecorder{bodies: map[string]map[string]any{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := rec.record(r); code != 0 {
			http.Error(w, "upstream down", code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /city/dtt/":
			_, _ = w.Write([]byte(`[{"dtt_id": 51, "display_name": "Santiago"}, {"dtt_id": 60, "display_name": "Valparaíso"}]`))
		case "POST /v1/hotel/":
			_, _ = w.Write([]byte(`{"data": [` + hotelJSON + `]}`))
		case "POST /v1/hotel/42/":
			_, _ = w.Write([]byte(`{"data": ` + hotelJSON + `}`))
		case "POST /v1/booking/":
			_, _ = w.Write([]byte(`{"file_number": 1001, "slug": "abc"}`))
		case "POST /v1/booking/cancel/":
			_, _ = w.Write([]byte(`{"slug": "abc"}`))
		case "GET /v1/booking/":
			_, _ = w.Write([]byte(`{"results": [{"file_number": "1001", "slug": "abc", "items": [{"id": 77}]}]}`))
		case "PUT /v1/booking/abc/", "PUT /v1/booking/item/77/":
			_, _ = w.Write([]byte(`{"file_number": "1001"}`))
		case "GET /v2/city/":
			_, _ = w.Write([]byte(`[{"id": 3, "name": "Santiago"}]`))
		case "GET /v2/availability/":
			_, _ = w.Write([]byte(servicesJSON))
		case "POST /v2/booking/":
			_, _ = w.Write([]byte(`{"booking_id": 9001}`))
		case "DELETE /v2/booking/9001/":
			_, _ = w.Write([]byte(`{"is_active": false}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := cts.NewClient(srv.URL+"/v1", srv.URL+"/v2",
		cts.WithCityURL(srv.URL+"/city/dtt/"),
		cts.WithFrontHost("https://front.example"),
	)
	return client, rec
}

func newRegistry(t *testing.T, c *cts.Client) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, cts.Register(reg, c))
	reg.Freeze()
	return reg
}

func run(reg *registry.Registry, name string, args map[string]any, locale domain.Locale) domain.ToolResult {
	return reg.Execute(context.Background(), domain.ToolRequest{
		Call:    domain.ToolCall{ID: "call_1", Name: name, Args: args},
		Request: domain.RequestContext{ThreadID: "t1", Locale: locale, Credential: "secret"},
	})
}

var usd = domain.Locale{Language: "en", Currency: "USD"}

func TestRegister_Catalogue(t *testing.T) {
	c, _ := newAPI(t)
	reg := newRegistry(t, c)

	hotel := reg.ToolsFor(domain.AgentHotel)
	assert.Len(t, hotel.Safe, 4)
	assert.Len(t, hotel.Sensitive, 3)

	trip := reg.ToolsFor(domain.AgentExcursionTransfer)
	assert.Len(t, trip.Safe, 4)
	assert.Len(t, trip.Sensitive, 2)

	assert.Empty(t, reg.ToolsFor(domain.AgentSupervisor).All())
	assert.True(t, reg.IsSensitive(cts.ToolCreateHotel))
	assert.False(t, reg.IsSensitive(cts.ToolHotelAvailability))

	d, ok := reg.Lookup(cts.ToolCreateService)
	require.True(t, ok)
	require.NotNil(t, d.Parameters)
	assert.Contains(t, d.Parameters.Required, "serviceCode")
}

func TestCurrencyID(t *testing.T) {
	assert.Equal(t, cts.CurrencyCLP, cts.CurrencyID(domain.Locale{}))
	assert.Equal(t, cts.CurrencyCLP, cts.CurrencyID(domain.Locale{Currency: "clp"}))
	assert.Equal(t, cts.CurrencyUSD, cts.CurrencyID(usd))
}

func TestHotelTownID(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolHotelTownID, map[string]any{"townName": "valparaiso"}, usd)
	require.False(t, res.IsError, res.Content)
	assert.Equal(t, "60", res.Content)
	rec.mu.Lock()
	assert.Equal(t, "token secret", rec.auth[0])
	rec.mu.Unlock()

	res = run(reg, cts.ToolHotelTownID, map[string]any{"townName": "Atlantis"}, usd)
	assert.Contains(t, res.Content, "51\t|\tSantiago")
}

func TestSearchHotels(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolHotelAvailability, map[string]any{
		"townId": 51, "checkin_date": "2025-03-01", "checkout_date": "2025-03-03", "adults": 2,
	}, usd)
	require.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "Hotel Name: Hotel Plaza")
	assert.Contains(t, res.Content, "Hotel Stars: ★★★★\n")
	assert.Contains(t, res.Content, "Price: From $100 USD")
	assert.Contains(t, res.Content, "https://front.example/travel-assistant/hotels/42?")

	body := rec.body("POST /v1/hotel/")
	require.NotNil(t, body)
	assert.Equal(t, "51", body["townId"])
	assert.EqualValues(t, 2, body["currency"])
	rooms := body["rooms"].([]any)
	assert.EqualValues(t, 2, rooms[0].(map[string]any)["adults"])
}

func TestSearchHotels_MissingArguments(t *testing.T) {
	c, _ := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolHotelAvailability, map[string]any{"townId": "51"}, usd)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "Error: invalid arguments: checkin_date is required")
}

func TestHotelInfoAndRooms(t *testing.T) {
	c, _ := newAPI(t)
	reg := newRegistry(t, c)
	args := map[string]any{"hotelId": "42", "townId": "51", "checkin_date": "2025-03-10", "checkout_date": "2025-03-12"}

	info := run(reg, cts.ToolHotelInfo, args, usd)
	require.False(t, info.IsError, info.Content)
	assert.Contains(t, info.Content, "Hotel Amenities: Wifi, Pool")
	assert.Contains(t, info.Content, "Hotel Description (English): No pets")

	rooms := run(reg, cts.ToolHotelRooms, args, usd)
	require.False(t, rooms.IsError, rooms.Content)
	assert.Contains(t, rooms.Content, "ROOM 1: \nRoom Id: 7\n")
	assert.Contains(t, rooms.Content, "ROOM 2: \nRoom Id: 8\n")
	assert.NotContains(t, rooms.Content, "ROOM 3")
	assert.Contains(t, rooms.Content, "Cancellation time: 08 de marzo de 2025")
	assert.Contains(t, rooms.Content, "Price: $120 USD.")
}

func TestCreateHotelBooking(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolCreateHotel, map[string]any{
		"hotelId": 42, "townId": "51", "checkin_date": "2025-03-01", "checkout_date": "2025-03-03",
		"roomId": 7, "name": "Ana", "lastName": "Pérez", "email": "ana@example.com",
	}, usd)
	require.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "The booking number is 1001")
	assert.Contains(t, res.Content, "https://front.example/bookings/abc")

	body := rec.body("POST /v1/booking/")
	require.NotNil(t, body)
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "USD", body["currency"])
	hotels := body["cart_items"].(map[string]any)["hotels"].([]any)
	h := hotels[0].(map[string]any)
	assert.Equal(t, "01-03-2025", h["travel_date"])
	assert.EqualValues(t, 2, h["nights"])
	assert.Equal(t, "http://img/1.jpg", h["cover_image"])
	rooms := h["rooms"].([]any)
	assert.Equal(t, "30m2", rooms[0].(map[string]any)["size"], "rooms are echoed as received")
}

func TestCreateHotelBooking_UnknownRoom(t *testing.T) {
	c, _ := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolCreateHotel, map[string]any{
		"hotelId": "42", "checkin_date": "2025-03-01", "checkout_date": "2025-03-03", "roomId": "99",
	}, usd)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "room 99 is not available")
}

func TestUpdateAndCancelHotelBooking(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)

	res := run(reg, cts.ToolUpdateHotel, map[string]any{"bookingId": "1001", "notes": "late arrival", "additionalInformation": "sea view"}, usd)
	require.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "successfully updated")
	assert.Equal(t, "late arrival", rec.body("PUT /v1/booking/abc/")["notes"])
	assert.Equal(t, "sea view", rec.body("PUT /v1/booking/item/77/")["additional_information"])

	res = run(reg, cts.ToolUpdateHotel, map[string]any{"bookingId": "404", "notes": "x"}, usd)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content, "was not found")

	res = run(reg, cts.ToolCancelHotel, map[string]any{"bookingId": "1001"}, usd)
	require.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "successfully cancelled")
	assert.Equal(t, "1001", rec.body("POST /v1/booking/cancel/")["file_number"])
}

func TestServiceTools(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)
	clp := domain.Locale{Language: "es", Currency: "CLP"}

	town := run(reg, cts.ToolServiceTownID, map[string]any{"townName": "santiago"}, clp)
	assert.Equal(t, "3", town.Content)

	list := run(reg, cts.ToolServiceAvailability, map[string]any{"townId": 3, "tipos": 2, "fecha": "2025-03-02"}, clp)
	require.False(t, list.IsError, list.Content)
	assert.Contains(t, list.Content, "EXCURSION SERVICE 1:")
	assert.Contains(t, list.Content, "Price: From $50000 CLP")
	assert.Contains(t, list.Content, "Pickup from: Hotel lobby, Santiago")
	assert.Contains(t, list.Content, "Type of service: Shared and Private")
	rec.mu.Lock()
	last := rec.queries[len(rec.queries)-1]
	rec.mu.Unlock()
	assert.Contains(t, last, "currency=1")
	assert.Contains(t, last, "tipos=2")

	args := map[string]any{"serviceId": 300, "townId": 3, "tipos": 2, "date": "2025-03-02", "adults": 2}
	desc := run(reg, cts.ToolServiceDescription, args, clp)
	assert.Contains(t, desc.Content, "Description (English): Coastal tour")

	opts := run(reg, cts.ToolServiceOptions, args, clp)
	assert.Contains(t, opts.Content, "OPTION 2:")
	assert.Contains(t, opts.Content, "Service code: 5001")

	missing := run(reg, cts.ToolServiceDescription, map[string]any{"serviceId": 1, "townId": 3, "tipos": 2, "date": "2025-03-02"}, clp)
	assert.True(t, missing.IsError)

	bad := run(reg, cts.ToolServiceAvailability, map[string]any{"townId": 3, "tipos": 7, "fecha": "2025-03-02"}, clp)
	assert.True(t, bad.IsError)
	assert.Contains(t, bad.Content, "tipos must be 1")
}

func TestServiceBooking(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)
	clp := domain.Locale{Language: "es", Currency: "CLP"}

	res := run(reg, cts.ToolCreateService, map[string]any{
		"serviceId": 300, "serviceCode": 5001, "townId": 3, "tipos": 2, "language": "inglés",
		"travelDate": "2025-03-02", "firstName": "Ana", "lastName": "Pérez",
	}, clp)
	require.False(t, res.IsError, res.Content)
	assert.Contains(t, res.Content, "The booking number is 9001")

	body := rec.body("POST /v2/booking/")
	require.NotNil(t, body)
	svc := body["services"].([]any)[0].(map[string]any)
	assert.Equal(t, "Inglés", svc["language"])
	assert.Equal(t, "N/A", svc["flight_number"])
	assert.EqualValues(t, 50000, svc["sale_price"])

	cancel := run(reg, cts.ToolCancelService, map[string]any{"bookingId": 9001}, clp)
	require.False(t, cancel.IsError, cancel.Content)
	assert.Contains(t, cancel.Content, "successfully cancelled")
}

func TestClient_Failures(t *testing.T) {
	c, rec := newAPI(t)
	reg := newRegistry(t, c)

	noToken := reg.Execute(context.Background(), domain.ToolRequest{
		Call: domain.ToolCall{ID: "c", Name: cts.ToolHotelTownID, Args: map[string]any{"townName": "x"}},
	})
	assert.True(t, noToken.IsError)
	assert.Contains(t, noToken.Content, cts.ErrMissingCredential.Error())

	rec.fail(http.StatusBadGateway)
	res := run(reg, cts.ToolCancelHotel, map[string]any{"bookingId": "1"}, usd)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "returned 502")
}

func TestClient_ErrorBodyKeepsWholeRunes(t *testing.T) {
	// 511 ASCII bytes, then a two-byte rune straddling the cut.
	body := strings.Repeat("a", 511) + "ñandú"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	reg := newRegistry(t, cts.NewClient(srv.URL+"/v1", srv.URL+"/v2", cts.WithCityURL(srv.URL+"/city/")))
	res := run(reg, cts.ToolCancelHotel, map[string]any{"bookingId": "1"}, usd)

	require.True(t, res.IsError)
	assert.Contains(t, res.Content, "returned 500")
	assert.True(t, utf8.ValidString(res.Content), "error text must stay valid UTF-8")
	assert.Contains(t, res.Content, strings.Repeat("a", 511))
	assert.NotContains(t, res.Content, "ñ")
}
