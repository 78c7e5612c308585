package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/pkg/logger"
)

// Layout of the flat reco line
const (
	FieldSeparator   = "^"
	RecoPrefixFields = 15
	FlightFields     = 10
)

// ErrDecode marks every record the parser could not turn into a RawRecoLine.
var ErrDecode = errors.New("decode reco line")

// DecodeError carries the offending input along with the cause.
type DecodeError struct {
	Line   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDecode.Error(), e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// RecoParser decodes flat "^" separated reco lines.
type RecoParser struct {
	strict bool
	logger logger.Logger
}

// NewRecoParser creates a parser. In strict mode a line whose field count is not
// exactly the prefix plus ten fields per declared flight is rejected; otherwise
// short or long flight blocks are tolerated.
func NewRecoParser(strict bool, logger logger.Logger) *RecoParser {
	return &RecoParser{
		strict: strict,
		logger: logger,
	}
}

// DecodeEnvelope extracts the reco line from an input-topic JSON message.
func (p *RecoParser) DecodeEnvelope(data []byte) ([]byte, error) {
	var envelope entity.RawEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &DecodeError{Line: string(data), Reason: fmt.Sprintf("invalid envelope: %v", err)}
	}
	if envelope.Payload.Column01 == nil {
		return nil, &DecodeError{Line: string(data), Reason: "envelope has no payload.column01"}
	}
	return []byte(*envelope.Payload.Column01), nil
}

// Decode parses one flat reco line.
func (p *RecoParser) Decode(payload []byte) (*entity.RawRecoLine, error) {
	line := strings.TrimRightFunc(string(payload), unicode.IsSpace)

	fields := strings.Split(line, FieldSeparator)
	if len(fields) <= 1 {
		p.logger.Warn("Empty line")
		return nil, &DecodeError{Line: line, Reason: "empty line"}
	}
	if len(fields) < RecoPrefixFields {
		return nil, p.fail(line, fmt.Sprintf("expected at least %d fields, got %d", RecoPrefixFields, len(fields)))
	}

	nbOfFlights, err := strconv.Atoi(strings.TrimSpace(fields[14]))
	if err != nil {
		return nil, p.fail(line, fmt.Sprintf("invalid flight count %q", fields[14]))
	}

	if p.strict {
		want := RecoPrefixFields + max(nbOfFlights, 0)*FlightFields
		if len(fields) != want {
			return nil, p.fail(line, fmt.Sprintf("expected %d fields for %d flights, got %d", want, nbOfFlights, len(fields)))
		}
	}

	reco := &entity.RawRecoLine{
		VersionNb:         fields[0],
		SearchID:          fields[1],
		SearchCountry:     fields[2],
		SearchDate:        fields[3],
		SearchTime:        fields[4],
		OriginCity:        fields[5],
		DestinationCity:   fields[6],
		RequestDepDate:    fields[7],
		RequestReturnDate: fields[8],
		PassengersString:  fields[9],
		Currency:          fields[10],
		Price:             fields[11],
		Taxes:             fields[12],
		Fees:              fields[13],
		NbOfFlights:       nbOfFlights,
		Flights:           make([]entity.Flight, 0, max(nbOfFlights, 0)),
	}

	offset := RecoPrefixFields
	for i := 0; i < nbOfFlights; i++ {
		reco.Flights = append(reco.Flights, flightFromFields(fields, offset))
		offset += FlightFields
	}

	return reco, nil
}

// Encode joins a RawRecoLine back into its flat form.
func (p *RecoParser) Encode(reco *entity.RawRecoLine) string {
	fields := []string{
		reco.VersionNb,
		reco.SearchID,
		reco.SearchCountry,
		reco.SearchDate,
		reco.SearchTime,
		reco.OriginCity,
		reco.DestinationCity,
		reco.RequestDepDate,
		reco.RequestReturnDate,
		reco.PassengersString,
		reco.Currency,
		reco.Price,
		reco.Taxes,
		reco.Fees,
		strconv.Itoa(len(reco.Flights)),
	}
	for _, f := range reco.Flights {
		fields = append(fields,
			f.DepAirport, f.DepDate, f.DepTime,
			f.ArrAirport, f.ArrDate, f.ArrTime,
			f.OperatingAirline, f.MarketingAirline,
			f.FlightNb, f.Cabin,
		)
	}
	return strings.Join(fields, FieldSeparator)
}

func (p *RecoParser) fail(line, reason string) error {
	p.logger.Error("Failed at decoding CSV line", "line", line, "reason", reason)
	return &DecodeError{Line: line, Reason: reason}
}

// flightFromFields reads up to ten fields starting at offset. Missing trailing
// fields are left empty.
func flightFromFields(fields []string, offset int) entity.Flight {
	get := func(i int) string {
		if offset+i < len(fields) {
			return fields[offset+i]
		}
		return ""
	}
	return entity.Flight{
		DepAirport:       get(0),
		DepDate:          get(1),
		DepTime:          get(2),
		ArrAirport:       get(3),
		ArrDate:          get(4),
		ArrTime:          get(5),
		OperatingAirline: get(6),
		MarketingAirline: get(7),
		FlightNb:         get(8),
		Cabin:            get(9),
	}
}
