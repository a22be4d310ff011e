package cts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
)

type named struct {
	Name string `json:"name"`
}

type hotelRoom struct {
	RoomtypeID       json.Number `json:"roomtype_id"`
	Roomtype         string      `json:"roomtype"`
	RateplanName     string      `json:"rateplan_name"`
	CancellationType string      `json:"cancellation_type"`
	Mealplan         string      `json:"mealplan"`
	Adults           int         `json:"adults"`
	BedOptions       string      `json:"bed_options"`
	Size             any         `json:"size"`
	Details          []struct {
		InventoryID any `json:"inventory_id"`
		RateID      any `json:"rate_id"`
	} `json:"details"`

	// raw is the room exactly as the API sent it; bookings echo it back.
	raw json.RawMessage
}

func (r *hotelRoom) UnmarshalJSON(b []byte) error {
	type plain hotelRoom
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r hotelRoom) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain hotelRoom
	return json.Marshal(plain(r))
}

type hotelAvailability struct {
	CurrencyID             int              `json:"currency_id"`
	PriceBase              float64          `json:"price_base"`
	PriceValue             float64          `json:"price_value"`
	PriceValueWithTax      float64          `json:"price_value_with_tax"`
	AdditionalBase         float64          `json:"additional_base"`
	AdditionalTotalBase    float64          `json:"additional_total_base"`
	AdditionalValueWithTax float64          `json:"additional_value_with_tax"`
	Markup                 []any            `json:"markup"`
	Details                []map[string]any `json:"details"`
	Rooms                  []hotelRoom      `json:"rooms"`
}

type hotelData struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	TownID   json.Number `json:"town_id"`
	Town     named       `json:"town"`
	Address  string      `json:"address"`
	Phone    string      `json:"phone"`
	Checkin  string      `json:"checkin"`
	Checkout string      `json:"checkout"`
	Category struct {
		Name   string  `json:"name"`
		Rating float64 `json:"rating"`
	} `json:"category"`
	PoliciesDescription   string  `json:"policies_description"`
	PoliciesDescriptionEn string  `json:"policies_description_en"`
	Ammenities            []named `json:"ammenities"`
	Cancellation          float64 `json:"cancellation"`
	Images                []struct {
		URL       string `json:"url"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"images"`
	Availability []hotelAvailability `json:"availability"`
}

func (h hotelData) amenities() string {
	names := make([]string, 0, len(h.Ammenities))
	for _, a := range h.Ammenities {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// offerFor returns the first availability that includes the room type.
func (h hotelData) offerFor(roomID string) *hotelAvailability {
	for i := range h.Availability {
		for _, room := range h.Availability[i].Rooms {
			if room.RoomtypeID.String() == roomID {
				return &h.Availability[i]
			}
		}
	}
	return nil
}

func (h hotelData) primaryImage() string {
	for _, img := range h.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	return ""
}

type roomRequest struct {
	Adults   int   `json:"adults"`
	Children int   `json:"children"`
	Infants  int   `json:"infants"`
	Ages     []int `json:"ages"`
}

type hotelQuery struct {
	TownID   string        `json:"townId"`
	Checkin  string        `json:"checkin"`
	Checkout string        `json:"checkout"`
	Rooms    []roomRequest `json:"rooms"`
	Currency int           `json:"currency"`
}

func newHotelQuery(args HotelSearchArgs, l domain.Locale) hotelQuery {
	ages := args.Ages
	if ages == nil {
		ages = []int{}
	}
	return hotelQuery{
		TownID:   args.TownID,
		Checkin:  args.CheckinDate,
		Checkout: args.CheckoutDate,
		Rooms: []roomRequest{{
			Adults:   args.Adults,
			Children: args.Children,
			Infants:  args.Infants,
			Ages:     ages,
		}},
		Currency: CurrencyID(l),
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre"}

func spanishDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// SearchHotels lists hotels with availability in a town.
func (c *Client) SearchHotels(ctx context.Context, req domain.ToolRequest) (any, error) {
	args := defaultSearch()
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("townId", args.TownID, "checkin_date", args.CheckinDate, "checkout_date", args.CheckoutDate); err != nil {
		return nil, err
	}

	query := newHotelQuery(args, req.Request.Locale)
	var resp struct {
		Data []hotelData `json:"data"`
	}
	if err := c.post(ctx, req.Request, c.apiV1+"/hotel/", query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return "No hotels are available in this town for the requested dates.", nil
	}

	rooms, _ := json.Marshal(query.Rooms[0])
	var b strings.Builder
	b.WriteString("The hotels available are the following: \n\n")
	for _, h := range resp.Data {
		from := 0.0
		for i, a := range h.Availability {
			if i == 0 || a.PriceValueWithTax < from {
				from = a.PriceValueWithTax
			}
		}
		link := url.Values{}
		link.Set("townId", h.TownID.String())
		link.Set("checkin", args.CheckinDate)
		link.Set("checkout", args.CheckoutDate)
		link.Set("rooms", "["+string(rooms)+"]")

		fmt.Fprintf(&b, "Hotel ID: %s\n", h.ID)
		fmt.Fprintf(&b, "Hotel Name: %s\n", h.Name)
		fmt.Fprintf(&b, "Hotel Stars: %s\n", strings.Repeat("★", int(h.Category.Rating)))
		fmt.Fprintf(&b, "Hotel Address: %s\n", h.Address)
		fmt.Fprintf(&b, "Price: From $%s %s\n", formatPrice(from), currencyName(query.Currency))
		fmt.Fprintf(&b, "Click here to see details: %s\n", c.link("/travel-assistant/hotels/"+h.ID.String()+"?"+link.Encode()))
		b.WriteString("(Do not show the following to the user, use it to filter according to their needs)\n")
		fmt.Fprintf(&b, "Hotel Category: %s\n", h.Category.Name)
		fmt.Fprintf(&b, "Hotel Amenities: %s\n\n", h.amenities())
	}
	return b.String(), nil
}

func (c *Client) fetchHotel(ctx context.Context, req domain.ToolRequest) (HotelArgs, *hotelData, error) {
	args := HotelArgs{HotelSearchArgs: defaultSearch()}
	if err := decode(req.Call.Args, &args); err != nil {
		return args, nil, err
	}
	if err := required("hotelId", args.HotelID); err != nil {
		return args, nil, err
	}

	var resp struct {
		Data hotelData `json:"data"`
	}
	endpoint := c.apiV1 + "/hotel/" + url.PathEscape(args.HotelID) + "/"
	if err := c.post(ctx, req.Request, endpoint, newHotelQuery(args.HotelSearchArgs, req.Request.Locale), &resp); err != nil {
		return args, nil, err
	}
	return args, &resp.Data, nil
}

// HotelInfo describes one hotel.
func (c *Client) HotelInfo(ctx context.Context, req domain.ToolRequest) (any, error) {
	_, h, err := c.fetchHotel(ctx, req)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The hotel %s has the following information: \n\n", h.Name)
	fmt.Fprintf(&b, "Hotel ID: %s (Never show this item to the user, keep only for you)\n", h.ID)
	fmt.Fprintf(&b, "Hotel Name: %s\n", h.Name)
	fmt.Fprintf(&b, "Hotel Address: %s\n", h.Address)
	fmt.Fprintf(&b, "Hotel Category: %s\n", h.Category.Name)
	fmt.Fprintf(&b, "Hotel Stars: %s\n", formatPrice(h.Category.Rating))
	fmt.Fprintf(&b, "Hotel Description (Spanish): %s\n", h.PoliciesDescription)
	fmt.Fprintf(&b, "Hotel Description (English): %s\n", h.PoliciesDescriptionEn)
	b.WriteString("(Use the description matching the user's language, translating labels if needed)\n")
	fmt.Fprintf(&b, "Hotel Amenities: %s\n\n", h.amenities())
	return b.String(), nil
}

// HotelRooms lists the distinct rooms a hotel offers for the stay.
func (c *Client) HotelRooms(ctx context.Context, req domain.ToolRequest) (any, error) {
	args, h, err := c.fetchHotel(ctx, req)
	if err != nil {
		return nil, err
	}

	var deadline string
	if checkin, err := time.Parse(time.DateOnly, args.CheckinDate); err == nil {
		deadline = spanishDate(checkin.Add(-time.Duration(h.Cancellation * float64(time.Hour))))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The rooms available in %s from %s to %s are: \n\n", h.Name, args.CheckinDate, args.CheckoutDate)
	seen := map[string]bool{}
	n := 0
	for _, a := range h.Availability {
		currency := currencyName(a.CurrencyID)
		for _, room := range a.Rooms {
			id := room.RoomtypeID.String()
			if seen[id] {
				continue
			}
			seen[id] = true
			n++

			fmt.Fprintf(&b, "ROOM %d: \n", n)
			fmt.Fprintf(&b, "Room Id: %s\n", id)
			fmt.Fprintf(&b, "Room type or name: %s\n", room.Roomtype)
			if currency == "CLP" {
				fmt.Fprintf(&b, "Price: $%s %s, tax included.\n", formatPrice(a.PriceValueWithTax), currency)
			} else {
				fmt.Fprintf(&b, "Price: $%s %s.\n", formatPrice(a.PriceValueWithTax), currency)
			}
			fmt.Fprintf(&b, "Rate plan: %s\n", room.RateplanName)
			fmt.Fprintf(&b, "Cancellation policy: %s\n", room.CancellationType)
			if deadline != "" {
				fmt.Fprintf(&b, "Cancellation time: %s\n", deadline)
			}
			fmt.Fprintf(&b, "Meal plan: %s\n", room.Mealplan)
			fmt.Fprintf(&b, "Adults: %d\n", room.Adults)
			fmt.Fprintf(&b, "Bed options: %s (%v)\n\n", room.BedOptions, room.Size)
		}
	}
	if n == 0 {
		return fmt.Sprintf("The hotel %s has no rooms available from %s to %s.", h.Name, args.CheckinDate, args.CheckoutDate), nil
	}
	return b.String(), nil
}

// HotelTownID resolves a town name to the hotel directory ID, or lists the known towns.
func (c *Client) HotelTownID(ctx context.Context, req domain.ToolRequest) (any, error) {
	var args TownArgs
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("townName", args.TownName); err != nil {
		return nil, err
	}

	var towns []struct {
		ID          json.Number `json:"dtt_id"`
		DisplayName string      `json:"display_name"`
	}
	if err := c.get(ctx, req.Request, c.cityURL, &towns); err != nil {
		return nil, err
	}

	want := normalizeTown(args.TownName)
	var b strings.Builder
	b.WriteString("We could not find the town you are looking for, but here is a list of towns available. ")
	b.WriteString("Select the town you are looking for and use the town ID to search for hotels availability.\n\n")
	b.WriteString("Town ID\t|\tTown Name\n")
	for _, t := range towns {
		if normalizeTown(t.DisplayName) == want {
			return t.ID.String(), nil
		}
		fmt.Fprintf(&b, "%s\t|\t%s\n", t.ID, t.DisplayName)
	}
	return b.String(), nil
}

var accents = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U")

func normalizeTown(name string) string {
	return accents.Replace(strings.ToUpper(strings.TrimSpace(name)))
}

// CreateHotelBooking books the chosen room for one guest.
func (c *Client) CreateHotelBooking(ctx context.Context, req domain.ToolRequest) (any, error) {
	args := HotelBookingArgs{HotelArgs: HotelArgs{HotelSearchArgs: defaultSearch()}}
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("hotelId", args.HotelID, "roomId", args.RoomID,
		"checkin_date", args.CheckinDate, "checkout_date", args.CheckoutDate); err != nil {
		return nil, err
	}
	checkin, err := time.Parse(time.DateOnly, args.CheckinDate)
	if err != nil {
		return nil, fmt.Errorf("invalid checkin_date: %w", err)
	}
	checkout, err := time.Parse(time.DateOnly, args.CheckoutDate)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout_date: %w", err)
	}

	// Same lookup as HotelRooms so the booking reflects current prices.
	_, h, err := c.fetchHotel(ctx, req)
	if err != nil {
		return nil, err
	}

	chosen := h.offerFor(args.RoomID)
	if chosen == nil {
		return nil, fmt.Errorf("room %s is not available in hotel %s", args.RoomID, args.HotelID)
	}

	payload := c.hotelBookingPayload(args, h, chosen, req.Request.Locale, checkin, checkout)

	var resp struct {
		FileNumber any    `json:"file_number"`
		Slug       string `json:"slug"`
		Errors     any    `json:"errors"`
	}
	if err := c.post(ctx, req.Request, c.apiV1+"/booking/", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Errors != nil {
		return nil, fmt.Errorf("booking rejected: %v", resp.Errors)
	}
	if resp.FileNumber == nil {
		return nil, fmt.Errorf("empty response received from the server")
	}
	return fmt.Sprintf("The booking has been successfully created. The booking number is %v. "+
		"You can view the booking details at the following link: %s", resp.FileNumber, c.link("/bookings/"+resp.Slug)), nil
}

func (c *Client) hotelBookingPayload(args HotelBookingArgs, h *hotelData, a *hotelAvailability, l domain.Locale, checkin, checkout time.Time) map[string]any {
	currency := currencyName(CurrencyID(l))

	inventory := make([]map[string]any, 0)
	roomName := ""
	for _, room := range a.Rooms {
		roomName = room.Roomtype
		for _, d := range room.Details {
			inventory = append(inventory, map[string]any{
				"inventoryId": d.InventoryID,
				"roomName":    room.Roomtype,
				"rateIds":     []any{d.RateID},
				"adults":      []int{room.Adults},
				"amount":      1,
			})
		}
	}

	detailKeys := []string{"date", "total", "total_base", "total_with_tax", "additional_base",
		"additional_total_base", "additional_total_with_tax", "rooms"}
	details := make([]map[string]any, 0, len(a.Details))
	for _, d := range a.Details {
		out := make(map[string]any, len(detailKeys))
		for _, k := range detailKeys {
			out[k] = d[k]
		}
		details = append(details, out)
	}

	var markup any
	if len(a.Markup) > 0 {
		markup = a.Markup[0]
	}

	serviceQuery := url.Values{}
	serviceQuery.Set("townId", args.TownID)
	serviceQuery.Set("checkin", args.CheckinDate)
	serviceQuery.Set("checkout", args.CheckoutDate)

	return map[string]any{
		"name":                 args.Name,
		"last_name":            args.LastName,
		"passport_or_dni":      args.PassportOrDni,
		"email":                args.Email,
		"phone":                args.Phone,
		"country":              args.Country,
		"notes":                args.Notes,
		"currency":             currency,
		"adults":               args.Adults,
		"children":             args.Children,
		"infants":              args.Infants,
		"total_amount":         a.PriceValueWithTax,
		"total_net_amount":     a.PriceValue,
		"total_collect_amount": a.PriceValueWithTax,
		"reference_number":     args.ReferenceNumber,
		"user":                 1,
		"booking_availability": []map[string]any{{
			"hotelId":      h.ID,
			"hotelName":    h.Name,
			"inventoryIds": inventory,
		}},
		"cart_items": map[string]any{
			"count": 1,
			"hotels": []map[string]any{{
				"dtt_hotel_code":         args.HotelID,
				"dtt_hotel_markup":       markup,
				"glosa_visualizer":       h.Name,
				"glosa_soptur":           h.Name,
				"provider":               "DTT",
				"city":                   h.Town.Name,
				"country":                h.Town.Name,
				"concepts":               h.amenities(),
				"service_type":           "hotel",
				"adults":                 args.Adults,
				"children":               args.Children,
				"infants":                args.Infants,
				"adult_total_amount":     a.PriceValueWithTax,
				"children_total_amount":  a.AdditionalValueWithTax,
				"amount":                 a.PriceValueWithTax,
				"net_amount":             a.PriceValue,
				"pull_inventory":         "false",
				"hotel_additional_total": a.AdditionalTotalBase,
				"hotel_additional_base":  a.AdditionalBase,
				"hotel_total":            a.PriceBase,
				"travel_date":            checkin.Format("02-01-2006"),
				"checkout":               checkout.Format("02-01-2006"),
				"cover_image":            h.primaryImage(),
				"payload_detail":         details,
				"dtt_fee_percent":        0,
				"dtt_fee_value":          0,
				"total_dtt":              0,
				"rooms":                  a.Rooms,
				"nights":                 int(checkout.Sub(checkin).Hours() / 24),
				"hotelName":              h.Name,
				"roomType":               roomName,
				"subTotalPrice":          a.PriceValue,
				"taxPrice":               a.PriceValueWithTax - a.PriceValue,
				"totalPrice":             a.PriceValueWithTax,
				"serviceUrl":             "/results/hotels/" + args.HotelID + "?" + serviceQuery.Encode() + "#rooms",
				"item_extras": map[string]any{
					"address":      h.Address,
					"description":  h.PoliciesDescription,
					"checkinHour":  h.Checkin,
					"checkoutHour": h.Checkout,
					"hotelPhone":   h.Phone,
				},
				"cancellationTime":       h.Cancellation,
				"additional_information": args.Notes,
			}},
			"services":  []any{},
			"packages":  []any{},
			"createdAt": time.Now().Format(time.RFC3339),
			"discount":  map[string]any{},
		},
		"language": languageTag(l),
		"company":  nil,
	}
}

func languageTag(l domain.Locale) string {
	if l.Language == "" {
		return domain.DefaultLocale.Language
	}
	return l.Language
}

type bookingSummary struct {
	FileNumber any    `json:"file_number"`
	Slug       string `json:"slug"`
	Items      []struct {
		ID any `json:"id"`
	} `json:"items"`
}

// UpdateHotelBooking changes the notes, reference number or hotel remarks of a booking.
func (c *Client) UpdateHotelBooking(ctx context.Context, req domain.ToolRequest) (any, error) {
	var args UpdateHotelBookingArgs
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("bookingId", args.BookingID); err != nil {
		return nil, err
	}
	if args.AdditionalInformation == "" && args.Notes == "" && args.ReferenceNumber == "" {
		return nil, fmt.Errorf("nothing to update on booking %s", args.BookingID)
	}

	var list struct {
		Results []bookingSummary `json:"results"`
	}
	if err := c.get(ctx, req.Request, c.apiV1+"/booking/?showOnlyMyBookings=true", &list); err != nil {
		return nil, err
	}
	var booking *bookingSummary
	for i := range list.Results {
		if fmt.Sprint(list.Results[i].FileNumber) == args.BookingID {
			booking = &list.Results[i]
			break
		}
	}
	if booking == nil {
		return fmt.Sprintf("The booking %s was not found.", args.BookingID), nil
	}

	if args.AdditionalInformation != "" {
		if len(booking.Items) == 0 {
			return nil, fmt.Errorf("booking %s has no items to annotate", args.BookingID)
		}
		endpoint := fmt.Sprintf("%s/booking/item/%v/", c.apiV1, booking.Items[0].ID)
		body := map[string]any{"additional_information": args.AdditionalInformation, "flight_number": ""}
		if err := c.do(ctx, req.Request, http.MethodPut, endpoint, body, nil); err != nil {
			return nil, err
		}
	}
	if args.Notes != "" || args.ReferenceNumber != "" {
		endpoint := c.apiV1 + "/booking/" + url.PathEscape(booking.Slug) + "/"
		body := map[string]any{"notes": args.Notes, "reference_number": args.ReferenceNumber}
		if err := c.do(ctx, req.Request, http.MethodPut, endpoint, body, nil); err != nil {
			return nil, err
		}
	}

	return fmt.Sprintf("The booking %s has been successfully updated. You can view the booking details at the following link: %s",
		args.BookingID, c.link("/bookings/"+booking.Slug)), nil
}

// CancelHotelBooking cancels a hotel booking by file number.
func (c *Client) CancelHotelBooking(ctx context.Context, req domain.ToolRequest) (any, error) {
	var args BookingRef
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("bookingId", args.BookingID); err != nil {
		return nil, err
	}

	var resp struct {
		Slug string `json:"slug"`
	}
	if err := c.post(ctx, req.Request, c.apiV1+"/booking/cancel/", map[string]any{"file_number": args.BookingID}, &resp); err != nil {
		return nil, err
	}
	if resp.Slug == "" {
		return fmt.Sprintf("The booking %s could not be cancelled.", args.BookingID), nil
	}
	return fmt.Sprintf("The booking %s has been successfully cancelled. You can check its status at the following link: %s",
		args.BookingID, c.link("/bookings/"+resp.Slug)), nil
}
