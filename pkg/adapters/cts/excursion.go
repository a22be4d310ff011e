package cts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aretw0/concierge/pkg/domain"
)

const (
	tiposTransfer  = 1
	tiposExcursion = 2
)

type serviceOption struct {
	ServiceCode      json.Number `json:"service_code"`
	SalePrice        float64     `json:"sale_price"`
	Currency         string      `json:"currency"`
	ServiceDuration  any         `json:"service_duration"`
	MeetingPoint     string      `json:"meeting_point"`
	City             string      `json:"city"`
	AllowChilds      bool        `json:"allow_childs"`
	IsRegular        bool        `json:"is_regular"`
	CancellationDate string      `json:"cancellation_date"`
	TravelDate       string      `json:"travel_date"`
	Language         []string    `json:"language"`
	Guide            any         `json:"guide"`
	Adults           int         `json:"adults"`
	Children         int         `json:"children"`
}

type service struct {
	ID     json.Number `json:"id"`
	City   string      `json:"city"`
	Glosas struct {
		ES string `json:"g_text_es"`
		EN string `json:"g_text_en"`
	} `json:"glosas"`
	Descriptions struct {
		ES string `json:"d_text_es"`
		EN string `json:"d_text_en"`
	} `json:"descriptions"`
	Concepts []string        `json:"concepts"`
	Services []serviceOption `json:"services"`
}

// kind names the regularity mix of a service's options.
func (s service) kind() string {
	shared, private := false, false
	for _, o := range s.Services {
		if o.IsRegular {
			shared = true
		} else {
			private = true
		}
	}
	switch {
	case shared && private:
		return "Shared and Private"
	case shared:
		return "Shared"
	default:
		return "Private"
	}
}

func serviceLabel(tipos int) string {
	if tipos == tiposExcursion {
		return "excursion"
	}
	return "transfer"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func (c *Client) availability(ctx context.Context, rc domain.RequestContext, townID string, tipos int, date string, adults, children int) ([]service, error) {
	q := url.Values{}
	q.Set("townId", townID)
	q.Set("tipos", strconv.Itoa(tipos))
	q.Set("fecha", date)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("children", strconv.Itoa(children))
	q.Set("currency", strconv.Itoa(CurrencyID(rc.Locale)))

	var services []service
	if err := c.get(ctx, rc, c.apiV2+"/availability/?"+q.Encode(), &services); err != nil {
		return nil, err
	}
	return services, nil
}

func findService(services []service, id string) (*service, error) {
	for i := range services {
		if services[i].ID.String() == id {
			return &services[i], nil
		}
	}
	return nil, fmt.Errorf("service %s is not available on that date", id)
}

// ServiceTownID resolves a town name to the v2 city ID, or lists the known cities.
func (c *Client) ServiceTownID(ctx context.Context, req domain.ToolRequest) (any, error) {
	var args TownArgs
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("townName", args.TownName); err != nil {
		return nil, err
	}

	var towns []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	}
	if err := c.get(ctx, req.Request, c.apiV2+"/city/", &towns); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("We could not find the town you are looking for, but here is a list of towns available. ")
	b.WriteString("Select the town you are looking for and use the town ID to search for the availability of transport or excursions.\n\n")
	b.WriteString("Town ID\t|\tTown Name\n")
	for _, t := range towns {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(args.TownName)) {
			return t.ID.String(), nil
		}
		fmt.Fprintf(&b, "%s\t|\t%s\n", t.ID, t.Name)
	}
	return b.String(), nil
}

// SearchServices lists transfers (tipos 1) or excursions (tipos 2) in a town.
func (c *Client) SearchServices(ctx context.Context, req domain.ToolRequest) (any, error) {
	args := ServiceSearchArgs{Adults: 1}
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := validTipos(args.Tipos); err != nil {
		return nil, err
	}
	if err := required("townId", args.TownID, "fecha", args.Fecha); err != nil {
		return nil, err
	}

	services, err := c.availability(ctx, req.Request, args.TownID, args.Tipos, args.Fecha, args.Adults, args.Children)
	if err != nil {
		return nil, err
	}
	label := serviceLabel(args.Tipos)
	if len(services) == 0 {
		return fmt.Sprintf("No %ss are available in this town on %s.", label, args.Fecha), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %ss available are the following:\n\n", label)
	for i, s := range services {
		fmt.Fprintf(&b, "%s SERVICE %d:\n", strings.ToUpper(label), i+1)
		fmt.Fprintf(&b, "Service ID: %s\n", s.ID)
		fmt.Fprintf(&b, "Name (Spanish): %s\n", s.Glosas.ES)
		fmt.Fprintf(&b, "Name (English): %s\n", s.Glosas.EN)
		fmt.Fprintf(&b, "(Use the %s name matching the user's language, translating labels if needed)\n", label)
		if len(s.Services) > 0 {
			first := s.Services[0]
			fmt.Fprintf(&b, "Price: From $%s %s\n", formatPrice(first.SalePrice), first.Currency)
			if args.Tipos == tiposExcursion {
				fmt.Fprintf(&b, "Service duration: %v\n", first.ServiceDuration)
			}
			fmt.Fprintf(&b, "Pickup from: %s, %s\n", first.MeetingPoint, titleCase(first.City))
			if args.Tipos == tiposExcursion {
				fmt.Fprintf(&b, "Children allowed: %s\n", yesNo(first.AllowChilds))
			} else {
				fmt.Fprintf(&b, "Free cancellation: %s\n", yesNo(first.CancellationDate != ""))
			}
		}
		if args.Tipos == tiposExcursion {
			fmt.Fprintf(&b, "Includes: %s\n", strings.Join(s.Concepts, ", "))
		}
		fmt.Fprintf(&b, "Type of service: %s\n", s.kind())

		q := url.Values{}
		q.Set("desde", args.Fecha)
		q.Set("hasta", args.Fecha)
		q.Set("adults", strconv.Itoa(args.Adults))
		q.Set("children", strconv.Itoa(args.Children))
		q.Set("infants", "0")
		q.Set("pax", strconv.Itoa(args.Adults))
		q.Set("townName", titleCase(s.City))
		q.Set("townId", args.TownID)
		q.Set("serviceType", strconv.Itoa(args.Tipos))
		path := "/travel-assistant/services/"
		if args.Tipos == tiposTransfer {
			path = "/travel-assistant/transfer/"
		}
		fmt.Fprintf(&b, "See details: %s\n\n", c.link(path+s.ID.String()+"?"+q.Encode()))
	}
	return b.String(), nil
}

func regularity(shared bool) string {
	if shared {
		return "Shared"
	}
	return "Private"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func (c *Client) lookupService(ctx context.Context, req domain.ToolRequest) (ServiceArgs, *service, error) {
	args := ServiceArgs{Adults: 1}
	if err := decode(req.Call.Args, &args); err != nil {
		return args, nil, err
	}
	if err := validTipos(args.Tipos); err != nil {
		return args, nil, err
	}
	if err := required("serviceId", args.ServiceID, "townId", args.TownID, "date", args.Date); err != nil {
		return args, nil, err
	}
	services, err := c.availability(ctx, req.Request, args.TownID, args.Tipos, args.Date, args.Adults, args.Children)
	if err != nil {
		return args, nil, err
	}
	s, err := findService(services, args.ServiceID)
	return args, s, err
}

// ServiceDescription describes one transfer or excursion.
func (c *Client) ServiceDescription(ctx context.Context, req domain.ToolRequest) (any, error) {
	args, s, err := c.lookupService(ctx, req)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s information is the following:\n\n", serviceLabel(args.Tipos))
	fmt.Fprintf(&b, "Name (Spanish): %s\n", s.Glosas.ES)
	fmt.Fprintf(&b, "Name (English): %s\n", s.Glosas.EN)
	fmt.Fprintf(&b, "Description (Spanish): %s\n", s.Descriptions.ES)
	fmt.Fprintf(&b, "Description (English): %s\n", s.Descriptions.EN)
	b.WriteString("(Use the name and description matching the user's language, translating labels if needed)\n")
	fmt.Fprintf(&b, "Includes: %s\n", strings.Join(s.Concepts, ", "))
	fmt.Fprintf(&b, "City: %s\n\n", s.City)
	return b.String(), nil
}

// ServiceOptions lists the bookable options of one transfer or excursion.
func (c *Client) ServiceOptions(ctx context.Context, req domain.ToolRequest) (any, error) {
	args, s, err := c.lookupService(ctx, req)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The options available for this %s are the following:\n\n", serviceLabel(args.Tipos))
	for i, o := range s.Services {
		fmt.Fprintf(&b, "OPTION %d:\n", i+1)
		fmt.Fprintf(&b, "Service code: %s (Never show this item to the user, keep only for you)\n", o.ServiceCode)
		fmt.Fprintf(&b, "Travel date: %s\n", o.TravelDate)
		fmt.Fprintf(&b, "Cancellation date: Until %s\n", o.CancellationDate)
		fmt.Fprintf(&b, "Language: %s\n", strings.Join(o.Language, ", "))
		fmt.Fprintf(&b, "Price: $%s %s\n", formatPrice(o.SalePrice), o.Currency)
		fmt.Fprintf(&b, "Service duration: %v\n", o.ServiceDuration)
		fmt.Fprintf(&b, "Pickup from: %s, %s\n", o.MeetingPoint, titleCase(o.City))
		fmt.Fprintf(&b, "Type of service: %s\n", regularity(o.IsRegular))
		fmt.Fprintf(&b, "Guide: %v\n\n", o.Guide)
	}
	return b.String(), nil
}

// CreateServiceBooking books one option of a transfer or excursion.
func (c *Client) CreateServiceBooking(ctx context.Context, req domain.ToolRequest) (any, error) {
	args := ServiceBookingArgs{Adults: 1, ReferenceNumber: "N/A", Notes: "N/A", FlightNumber: "N/A"}
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := validTipos(args.Tipos); err != nil {
		return nil, err
	}
	if err := required("serviceId", args.ServiceID, "serviceCode", args.ServiceCode,
		"townId", args.TownID, "travelDate", args.TravelDate); err != nil {
		return nil, err
	}

	services, err := c.availability(ctx, req.Request, args.TownID, args.Tipos, args.TravelDate, args.Adults, args.Children)
	if err != nil {
		return nil, err
	}
	s, err := findService(services, args.ServiceID)
	if err != nil {
		return nil, err
	}
	var option *serviceOption
	for i := range s.Services {
		if s.Services[i].ServiceCode.String() == args.ServiceCode {
			option = &s.Services[i]
			break
		}
	}
	if option == nil {
		return nil, fmt.Errorf("option %s of service %s is not available", args.ServiceCode, args.ServiceID)
	}

	language := args.Language
	for _, l := range option.Language {
		if strings.EqualFold(l, args.Language) {
			language = l
			break
		}
	}

	payload := map[string]any{
		"passenger": map[string]any{
			"name":            args.FirstName,
			"last_name":       args.LastName,
			"country":         args.Country,
			"email":           args.Email,
			"passport_or_dni": args.PassportOrDni,
			"phone":           args.Phone,
		},
		"notes":            args.Notes,
		"reference_number": args.ReferenceNumber,
		"currency":         CurrencyID(req.Request.Locale),
		"services": []map[string]any{{
			"service_code":  option.ServiceCode,
			"adults":        option.Adults,
			"children":      option.Children,
			"sale_price":    option.SalePrice,
			"language":      language,
			"travel_date":   option.TravelDate,
			"flight_number": args.FlightNumber,
			"notes":         args.Notes,
		}},
	}

	var resp struct {
		BookingID any `json:"booking_id"`
	}
	if err := c.post(ctx, req.Request, c.apiV2+"/booking/", payload, &resp); err != nil {
		return nil, err
	}
	if resp.BookingID == nil {
		return nil, fmt.Errorf("the booking could not be created")
	}
	return fmt.Sprintf("The booking was created successfully. The booking number is %v.", resp.BookingID), nil
}

// CancelServiceBooking cancels a transfer or excursion booking.
func (c *Client) CancelServiceBooking(ctx context.Context, req domain.ToolRequest) (any, error) {
	var args BookingRef
	if err := decode(req.Call.Args, &args); err != nil {
		return nil, err
	}
	if err := required("bookingId", args.BookingID); err != nil {
		return nil, err
	}

	var resp struct {
		IsActive *bool `json:"is_active"`
	}
	endpoint := c.apiV2 + "/booking/" + url.PathEscape(args.BookingID) + "/"
	if err := c.do(ctx, req.Request, http.MethodDelete, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.IsActive != nil && !*resp.IsActive {
		return fmt.Sprintf("The booking %s has been successfully cancelled.", args.BookingID), nil
	}
	return fmt.Sprintf("The booking %s could not be cancelled.", args.BookingID), nil
}
