package cts

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// HotelSearchArgs selects a stay. It is shared by the availability, info, rooms and booking tools.
type HotelSearchArgs struct {
	TownID       string `json:"townId,omitempty" mapstructure:"townId" jsonschema:"description=The town ID returned by get_town_id_for_hotels."`
	CheckinDate  string `json:"checkin_date,omitempty" mapstructure:"checkin_date" jsonschema:"description=The check-in date (YYYY-MM-DD)."`
	CheckoutDate string `json:"checkout_date,omitempty" mapstructure:"checkout_date" jsonschema:"description=The check-out date (YYYY-MM-DD)."`
	Adults       int    `json:"adults,omitempty" mapstructure:"adults" jsonschema:"description=The number of adults. Default is 1."`
	Children     int    `json:"children,omitempty" mapstructure:"children" jsonschema:"description=The number of children. Default is 0."`
	Infants      int    `json:"infants,omitempty" mapstructure:"infants" jsonschema:"description=The number of infants. Default is 0."`
	Ages         []int  `json:"ages,omitempty" mapstructure:"ages" jsonschema:"description=The ages of the children."`
}

// HotelArgs addresses a single hotel.
type HotelArgs struct {
	HotelID         string `json:"hotelId" mapstructure:"hotelId" jsonschema:"description=The hotel ID."`
	HotelSearchArgs `mapstructure:",squash"`
}

// TownArgs looks a town up by name.
type TownArgs struct {
	TownName string `json:"townName" mapstructure:"townName" jsonschema:"description=The town or city name."`
}

// HotelBookingArgs creates a hotel booking for one guest.
type HotelBookingArgs struct {
	HotelArgs       `mapstructure:",squash"`
	RoomID          string `json:"roomId" mapstructure:"roomId" jsonschema:"description=The room ID returned by get_hotel_rooms_available."`
	Name            string `json:"name" mapstructure:"name" jsonschema:"description=The name of the guest."`
	LastName        string `json:"lastName" mapstructure:"lastName" jsonschema:"description=The last name of the guest."`
	Email           string `json:"email" mapstructure:"email" jsonschema:"description=The email of the guest."`
	Phone           string `json:"phone" mapstructure:"phone" jsonschema:"description=The phone number of the guest."`
	PassportOrDni   string `json:"passportOrDni" mapstructure:"passportOrDni" jsonschema:"description=The passport or DNI of the guest."`
	Country         string `json:"country" mapstructure:"country" jsonschema:"description=The country of the guest."`
	ReferenceNumber string `json:"referenceNumber,omitempty" mapstructure:"referenceNumber" jsonschema:"description=The reference number."`
	Notes           string `json:"notes,omitempty" mapstructure:"notes" jsonschema:"description=Notes for the booking."`
}

// UpdateHotelBookingArgs amends an existing hotel booking.
type UpdateHotelBookingArgs struct {
	BookingID             string `json:"bookingId" mapstructure:"bookingId" jsonschema:"description=The booking ID."`
	AdditionalInformation string `json:"additionalInformation,omitempty" mapstructure:"additionalInformation" jsonschema:"description=Comments or remarks addressed to the hotel."`
	Notes                 string `json:"notes,omitempty" mapstructure:"notes" jsonschema:"description=Comments addressed to the customer or the tour operator."`
	ReferenceNumber       string `json:"referenceNumber,omitempty" mapstructure:"referenceNumber" jsonschema:"description=The reference number."`
}

// BookingRef names an existing booking.
type BookingRef struct {
	BookingID string `json:"bookingId" mapstructure:"bookingId" jsonschema:"description=The booking ID."`
}

// ServiceSearchArgs lists transfers or excursions in a town on one date.
type ServiceSearchArgs struct {
	TownID   string `json:"townId" mapstructure:"townId" jsonschema:"description=The town ID. Never ask it to the user; use get_town_id_for_transport_and_excursions."`
	Tipos    int    `json:"tipos" mapstructure:"tipos" jsonschema:"description=The type of service. 1 is for transfer and 2 is for excursions.,enum=1,enum=2"`
	Fecha    string `json:"fecha" mapstructure:"fecha" jsonschema:"description=The date (YYYY-MM-DD)."`
	Adults   int    `json:"adults,omitempty" mapstructure:"adults" jsonschema:"description=The number of adults. Default is 1."`
	Children int    `json:"children,omitempty" mapstructure:"children" jsonschema:"description=The number of children. Default is 0."`
}

// ServiceArgs addresses one transfer or excursion in an availability listing.
type ServiceArgs struct {
	ServiceID string `json:"serviceId" mapstructure:"serviceId" jsonschema:"description=The service ID. It is not the service code."`
	TownID    string `json:"townId" mapstructure:"townId" jsonschema:"description=The town ID."`
	Tipos     int    `json:"tipos" mapstructure:"tipos" jsonschema:"description=The type of service. 1 is for transfer and 2 is for excursions.,enum=1,enum=2"`
	Date      string `json:"date" mapstructure:"date" jsonschema:"description=The date (YYYY-MM-DD)."`
	Adults    int    `json:"adults,omitempty" mapstructure:"adults" jsonschema:"description=The number of adults. Default is 1."`
	Children  int    `json:"children,omitempty" mapstructure:"children" jsonschema:"description=The number of children. Default is 0."`
}

// ServiceBookingArgs books one option of a transfer or excursion.
type ServiceBookingArgs struct {
	ServiceID       string `json:"serviceId" mapstructure:"serviceId" jsonschema:"description=The service ID."`
	ServiceCode     string `json:"serviceCode" mapstructure:"serviceCode" jsonschema:"description=The service code of the chosen option."`
	TownID          string `json:"townId" mapstructure:"townId" jsonschema:"description=The town ID."`
	Tipos           int    `json:"tipos" mapstructure:"tipos" jsonschema:"description=The type of service. 1 is for transfer and 2 is for excursions.,enum=1,enum=2"`
	Language        string `json:"language" mapstructure:"language" jsonschema:"description=The language of the service: Español or Inglés or Portuguese."`
	TravelDate      string `json:"travelDate" mapstructure:"travelDate" jsonschema:"description=The travel date (YYYY-MM-DD)."`
	FirstName       string `json:"firstName" mapstructure:"firstName" jsonschema:"description=The first name of the passenger."`
	LastName        string `json:"lastName" mapstructure:"lastName" jsonschema:"description=The last name of the passenger."`
	Email           string `json:"email" mapstructure:"email" jsonschema:"description=The email of the passenger."`
	Phone           string `json:"phone" mapstructure:"phone" jsonschema:"description=The phone number of the passenger."`
	PassportOrDni   string `json:"passportOrDni" mapstructure:"passportOrDni" jsonschema:"description=The passport or DNI of the passenger."`
	Country         string `json:"country" mapstructure:"country" jsonschema:"description=The country of the passenger."`
	Adults          int    `json:"adults,omitempty" mapstructure:"adults" jsonschema:"description=The number of adults. Default is 1."`
	Children        int    `json:"children,omitempty" mapstructure:"children" jsonschema:"description=The number of children. Default is 0."`
	ReferenceNumber string `json:"referenceNumber,omitempty" mapstructure:"referenceNumber" jsonschema:"description=The reference number."`
	Notes           string `json:"notes,omitempty" mapstructure:"notes" jsonschema:"description=Notes for the booking."`
	FlightNumber    string `json:"flightNumber,omitempty" mapstructure:"flightNumber" jsonschema:"description=The flight number, for transfers."`
}

func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("invalid arguments: %s is required", pairs[i])
		}
	}
	return nil
}

func validTipos(t int) error {
	if t != 1 && t != 2 {
		return fmt.Errorf("invalid arguments: tipos must be 1 (transfer) or 2 (excursion), got %d", t)
	}
	return nil
}

func defaultSearch() HotelSearchArgs {
	return HotelSearchArgs{Adults: 1, Ages: []int{}}
}
