package cts

import (
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/registry"
)

// Tool names exposed to the planner.
const (
	ToolHotelAvailability = "get_availability_for_hotels"
	ToolHotelTownID       = "get_town_id_for_hotels"
	ToolHotelInfo         = "get_hotel_info"
	ToolHotelRooms        = "get_hotel_rooms_available"
	ToolCreateHotel       = "create_hotel_booking"
	ToolUpdateHotel       = "update_hotel_booking"
	ToolCancelHotel       = "cancel_hotel_booking"

	ToolServiceTownID       = "get_town_id_for_transport_and_excursions"
	ToolServiceAvailability = "get_availability_for_transfer_and_excursions"
	ToolServiceDescription  = "get_excursion_or_transfer_description"
	ToolServiceOptions      = "get_excursion_or_transfer_options_available"
	ToolCreateService       = "create_transport_or_excursion_booking"
	ToolCancelService       = "cancel_transport_or_excursion_booking"
)

type tool struct {
	desc domain.ToolDescriptor
	fn   registry.ToolFunction
}

// tools returns the catalogue bound to this client.
func (c *Client) tools() []tool {
	hotel := func(name, description string, safety domain.Safety, params any, fn registry.ToolFunction) tool {
		return tool{desc: descriptor(name, description, safety, domain.AgentHotel, params), fn: fn}
	}
	trip := func(name, description string, safety domain.Safety, params any, fn registry.ToolFunction) tool {
		return tool{desc: descriptor(name, description, safety, domain.AgentExcursionTransfer, params), fn: fn}
	}

	return []tool{
		hotel(ToolHotelTownID, "Get the town ID used by the hotel tools.",
			domain.Safe, TownArgs{}, c.HotelTownID),
		hotel(ToolHotelAvailability, "Get availability of hotels in a given town.",
			domain.Safe, HotelSearchArgs{}, c.SearchHotels),
		hotel(ToolHotelInfo, "Get general information about a specific hotel. Use it when the user asks about one hotel.",
			domain.Safe, HotelArgs{}, c.HotelInfo),
		hotel(ToolHotelRooms, "Get the rooms available in a hotel once the user has picked one and wants to reserve.",
			domain.Safe, HotelArgs{}, c.HotelRooms),
		hotel(ToolCreateHotel, "Create a hotel booking. Returns the booking number and a link to its details.",
			domain.Sensitive, HotelBookingArgs{}, c.CreateHotelBooking),
		hotel(ToolUpdateHotel, "Update the notes, reference number or hotel remarks of a hotel booking.",
			domain.Sensitive, UpdateHotelBookingArgs{}, c.UpdateHotelBooking),
		hotel(ToolCancelHotel, "Cancel a hotel booking.",
			domain.Sensitive, BookingRef{}, c.CancelHotelBooking),

		trip(ToolServiceTownID, "Get the town ID used by the transfer and excursion tools.",
			domain.Safe, TownArgs{}, c.ServiceTownID),
		trip(ToolServiceAvailability, "Get availability of transfers (tipos 1) or excursions (tipos 2) in a given town.",
			domain.Safe, ServiceSearchArgs{}, c.SearchServices),
		trip(ToolServiceDescription, "Get the description of a transfer or excursion.",
			domain.Safe, ServiceArgs{}, c.ServiceDescription),
		trip(ToolServiceOptions, "Get the bookable options of a transfer or excursion.",
			domain.Safe, ServiceArgs{}, c.ServiceOptions),
		trip(ToolCreateService, "Create a transfer or excursion booking.",
			domain.Sensitive, ServiceBookingArgs{}, c.CreateServiceBooking),
		trip(ToolCancelService, "Cancel a transfer or excursion booking.",
			domain.Sensitive, BookingRef{}, c.CancelServiceBooking),
	}
}

// Register adds the whole catalogue to reg.
func Register(reg *registry.Registry, c *Client) error {
	for _, t := range c.tools() {
		if err := reg.Register(t.desc, t.fn); err != nil {
			return err
		}
	}
	return nil
}

func descriptor(name, description string, safety domain.Safety, agent domain.AgentID, params any) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        name,
		Description: description,
		Parameters:  registry.SchemaOf(params),
		Safety:      safety,
		Agent:       agent,
	}
}
