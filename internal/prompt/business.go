package prompt

import (
	"fmt"
	"strings"
)

// Business reúne os dados fixos do consultório usados no preâmbulo
type Business struct {
	Name           string
	Branch         string
	Address        string
	EmergencyPhone string
	DirectPhone    string
	Email          string
	Hours          string
	Website        string
	Instagram      string
	Facebook       string
	BookingURL     string
	Services       []string
	Booking        []string
	Features       []string
	Location       []string
	Notes          []string
	Guidelines     []string
}

// DefaultBusiness retorna o perfil da Willows Dental Group (unidade Belton)
func DefaultBusiness() Business {
	return Business{
		Name:           "Willows Dental Group",
		Branch:         "Belton Location",
		Address:        "49 Westgate Road, Belton, Doncaster DN9 1PY, United Kingdom",
		EmergencyPhone: "+44 300 131 9797",
		DirectPhone:    "+44 1427 872106",
		Email:          "reception@willowsdentalgroup.co.uk",
		Hours:          "Monday-Friday 9:00 AM - 6:00 PM (Closed Bank Holidays)",
		Website:        "www.willowsdentalgroup.co.uk",
		Instagram:      "@willowsdentalgroup",
		Facebook:       "https://www.facebook.com/thewillowsdental/",
		BookingURL:     "https://pearlportal.net/Portal/wdp/OnlineBooking",
		Services: []string{
			"Emergency Dental Care - Same-day appointments for pain, swelling, broken teeth, trauma",
			"New Patient Examinations - Comprehensive initial assessments",
			"Routine Check-ups & Hygiene - Regular preventive care",
			"General Dentistry - Fillings, extractions, preventive treatments",
			"Cosmetic Dentistry - Teeth whitening, veneers, smile enhancements",
			"Restorative Treatments - Dental implants, crowns, bridges",
			"Invisalign & Teeth Straightening - Discreet alignment solutions",
			"Root Canal Treatment - Advanced endodontic care",
			"Sedation Dentistry - For anxious patients",
		},
		Booking: []string{
			"Phone bookings available for immediate assistance",
			"Deposits required for high-value private treatments (non-refundable)",
			"Cancellations within 48 hours forfeit deposit",
		},
		Features: []string{
			"Multi-location group (Belton flagship, plus Brigg and Market Rasen)",
			"Both NHS and private options available",
			"4.8/5 Google rating (171+ reviews)",
			"Family-friendly atmosphere",
			"Modern facilities",
			"Experienced, compassionate team",
		},
		Location: []string{
			"North Lincolnshire area, near Scunthorpe",
			"Residential village setting with easy access via A18",
			"Parking available",
		},
		Notes: []string{
			"Same-day emergency slots can fill up during busy periods",
			"After-hours emergencies: Direct to phone (no 24/7 coverage)",
		},
		Guidelines: []string{
			"Be warm, professional, and reassuring",
			"Keep responses concise (2-3 sentences max)",
			"Never start an answer with a greeting such as \"Hi\" or \"Hello\"",
			"For bookings, direct to online system or phone",
			"For pricing, mention both NHS and private options available",
			"Never make up information - only use details provided above",
			"Do NOT provide medical advice",
			"If unsure, suggest calling the practice directly",
			"Show empathy for dental anxiety or pain concerns",
		},
	}
}

// Preamble monta o texto fixo de instruções e informações do negócio.
// Nada aqui depende da mensagem do usuário.
func (b Business) Preamble() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a helpful dental assistant for %s (%s).\n\n", b.Name, b.Branch)

	sb.WriteString("BUSINESS INFORMATION:\n")
	fmt.Fprintf(&sb, "- Location: %s\n", b.Address)
	fmt.Fprintf(&sb, "- Phone: %s (emergency/group line), %s (direct)\n", b.EmergencyPhone, b.DirectPhone)
	fmt.Fprintf(&sb, "- Email: %s\n", b.Email)
	fmt.Fprintf(&sb, "- Hours: %s\n", b.Hours)
	fmt.Fprintf(&sb, "- Website: %s\n", b.Website)
	fmt.Fprintf(&sb, "- Instagram: %s\n", b.Instagram)
	fmt.Fprintf(&sb, "- Facebook: %s\n", b.Facebook)

	sb.WriteString("\nSERVICES:\n")
	for i, s := range b.Services {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}

	sb.WriteString("\nBOOKING:\n")
	fmt.Fprintf(&sb, "- Online booking: %s\n", b.BookingURL)
	writeList(&sb, b.Booking)

	sb.WriteString("\nKEY FEATURES:\n")
	writeList(&sb, b.Features)

	sb.WriteString("\nLOCATION DETAILS:\n")
	writeList(&sb, b.Location)

	sb.WriteString("\nIMPORTANT NOTES:\n")
	writeList(&sb, b.Notes)
	fmt.Fprintf(&sb, "- If online booking unavailable, call directly: %s\n", b.EmergencyPhone)

	sb.WriteString("\nRESPONSE GUIDELINES:\n")
	fmt.Fprintf(&sb, "- For emergencies, emphasize calling %s\n", b.EmergencyPhone)
	writeList(&sb, b.Guidelines)

	return strings.TrimRight(sb.String(), "\n")
}

// Acknowledgement é a resposta do modelo no estilo "primed"
func (b Business) Acknowledgement() string {
	return fmt.Sprintf("I understand. I'm ready to assist patients with information about %s.", b.Name)
}

// Unavailable é usado quando a chave da API não está configurada
func (b Business) Unavailable() string {
	return fmt.Sprintf("I'm currently unavailable. Please call us at %s for immediate assistance.", b.EmergencyPhone)
}

// Trouble é usado quando a chamada ao modelo falha
func (b Business) Trouble() string {
	return fmt.Sprintf("I'm having trouble right now. Please call us at %s or email %s for assistance.", b.EmergencyPhone, b.Email)
}

// EmptyReply substitui uma resposta do modelo sem texto
func (b Business) EmptyReply() string {
	return fmt.Sprintf("I apologize, but I couldn't generate a response. Please call us at %s for immediate assistance.", b.EmergencyPhone)
}

func writeList(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteByte('\n')
	}
}
