package machine

import (
	"fmt"
	"strings"
)

// headerOffset is where the labeled ASCII header begins in a cartridge
// image; execution begins right after it (spec.md §6).
const (
	headerOffset = 0x100
	entryPoint   = 0x200
)

// headerField names one fixed-width ASCII slot of the cartridge header,
// in the exact order and widths spec.md §6 lists them
// (`original_source/heaven_ice/header.cpp` fields).
type headerField struct {
	name string
	size int
}

var headerFields = []headerField{
	{"SystemType", 16},
	{"CopyrightReleaseDate", 16},
	{"GameTitleDomestic", 48},
	{"GameTitleOverseas", 48},
	{"SerialNumber", 14},
	{"Checksum", 2},
	{"DeviceSupport", 16},
	{"ROMAddressRange", 8},
	{"RAMAddressRange", 8},
	{"ExtraMemory", 12},
	{"ModemSupport", 12},
	{"Reserved1", 40},
	{"Region", 3},
	{"Reserved2", 13},
}

// Header is the cartridge image's parsed labeled header, trimmed of
// trailing spaces the way the original program's fields are padded
// (spec.md §6; original_source/heaven_ice/header.cpp prints but never
// trims these fields — trimming is this module's own addition, since a
// Go consumer comparing e.g. Region against "USA" shouldn't have to
// account for padding).
type Header struct {
	SystemType            string
	CopyrightReleaseDate  string
	GameTitleDomestic     string
	GameTitleOverseas     string
	SerialNumber          string
	Checksum              string
	DeviceSupport         string
	ROMAddressRange       string
	RAMAddressRange       string
	ExtraMemory           string
	ModemSupport          string
	Region                string
}

// ParseHeader slices the fixed-width fields out of a cartridge image's
// header region (bytes 0x100-0x1ff). rom must be at least headerOffset +
// 256 bytes long.
func ParseHeader(rom []byte) (Header, error) {
	end := headerOffset
	for _, f := range headerFields {
		end += f.size
	}
	if len(rom) < end {
		return Header{}, fmt.Errorf("machine: ROM too short for header: have %d bytes, need %d", len(rom), end)
	}

	values := make(map[string]string, len(headerFields))
	offset := headerOffset
	for _, f := range headerFields {
		values[f.name] = strings.TrimRight(string(rom[offset:offset+f.size]), " ")
		offset += f.size
	}

	return Header{
		SystemType:           values["SystemType"],
		CopyrightReleaseDate: values["CopyrightReleaseDate"],
		GameTitleDomestic:    values["GameTitleDomestic"],
		GameTitleOverseas:    values["GameTitleOverseas"],
		SerialNumber:         values["SerialNumber"],
		Checksum:             values["Checksum"],
		DeviceSupport:        values["DeviceSupport"],
		ROMAddressRange:      values["ROMAddressRange"],
		RAMAddressRange:      values["RAMAddressRange"],
		ExtraMemory:          values["ExtraMemory"],
		ModemSupport:         values["ModemSupport"],
		Region:               values["Region"],
	}, nil
}
