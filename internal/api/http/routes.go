package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

var validate = validator.New()

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast/daily", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		list, days, err := service.DailyForecast(c.UserContext(), *q.Lat, *q.Lon, q.unit())
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(fiber.Map{
			"location":       weather.GeoCoordinate{Lat: *q.Lat, Lon: *q.Lon},
			"city":           list.CityName,
			"timezoneOffset": list.TimezoneOffsetSeconds,
			"unit":           q.unit(),
			"provider":       list.Provider,
			"days":           days,
		})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cur, err := service.CurrentConditions(c.UserContext(), *q.Lat, *q.Lon, q.unit())
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(cur)
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(newStateResponse(service.State()))
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		if err := service.FetchWeather(c.UserContext()); err != nil {
			return serviceError(err)
		}
		return c.JSON(newStateResponse(service.State()))
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		var q searchQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := service.SearchCity(c.UserContext(), q.Query)
		if err != nil {
			return serviceError(err)
		}
		if len(results) > q.Limit {
			results = results[:q.Limit]
		}
		if results == nil {
			results = []weather.Location{}
		}
		return c.JSON(fiber.Map{
			"query":   q.Query,
			"results": results,
		})
	})

	v1.Post("/locations/select", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SelectLocation(c.UserContext(), req.toLocation()); err != nil {
			return serviceError(err)
		}
		return c.JSON(newStateResponse(service.State()))
	})

	v1.Post("/locations/resolve", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.ResolveLocation(c.UserContext(), *q.Lat, *q.Lon); err != nil {
			return serviceError(err)
		}
		return c.JSON(newStateResponse(service.State()))
	})

	v1.Put("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid unit payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SelectUnit(c.UserContext(), weather.TemperatureUnit(req.Unit)); err != nil {
			return serviceError(err)
		}
		return c.JSON(newStateResponse(service.State()))
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"favorites": service.State().Favorites})
	})

	v1.Post("/favorites/toggle", func(c *fiber.Ctx) error {
		var (
			added bool
			err   error
		)
		if len(c.Body()) == 0 {
			added, err = service.ToggleFavorite()
		} else {
			var req locationRequest
			if perr := c.BodyParser(&req); perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid location payload")
			}
			if verr := validate.Struct(req); verr != nil {
				return fiber.NewError(fiber.StatusBadRequest, verr.Error())
			}
			added, err = service.ToggleFavoriteLocation(req.toLocation())
		}
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(fiber.Map{
			"favorite":  added,
			"favorites": service.State().Favorites,
		})
	})
}

// serviceError maps weather errors onto HTTP statuses.
func serviceError(err error) error {
	msg := weather.UserMessage(err)
	switch {
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.NewError(fiber.StatusConflict, msg)
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msg)
	case errors.Is(err, weather.ErrUnauthorized),
		errors.Is(err, weather.ErrServerError),
		errors.Is(err, weather.ErrDecoding),
		errors.Is(err, weather.ErrBadURL),
		errors.Is(err, weather.ErrUnknown):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}

// coordQuery holds query parameters for identifying a coordinate.
type coordQuery struct {
	Lat  *float64 `validate:"required,gte=-90,lte=90"`
	Lon  *float64 `validate:"required,gte=-180,lte=180"`
	Unit string   `validate:"omitempty,oneof=metric imperial standard"`
}

func (q coordQuery) unit() weather.TemperatureUnit {
	return weather.ParseUnit(q.Unit)
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	var q coordQuery

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"lat", &q.Lat}, {"lon", &q.Lon}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("%s must be a number", p.name)
		}
		*p.dst = &v
	}
	q.Unit = strings.ToLower(c.Query("unit"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// searchQuery holds query parameters for the search endpoint.
type searchQuery struct {
	Query string `validate:"required"`
	Limit int    `validate:"min=1,max=5"`
}

func (s *searchQuery) bind(c *fiber.Ctx) error {
	s.Query = strings.TrimSpace(c.Query("q"))
	s.Limit = weather.GeocodeLimit

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		s.Limit = n
	}
	return nil
}

type locationRequest struct {
	Name    string   `json:"name" validate:"required"`
	Lat     *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Country *string  `json:"country"`
	State   *string  `json:"state"`
}

func (r locationRequest) toLocation() weather.Location {
	return weather.Location{
		Name:    r.Name,
		Lat:     *r.Lat,
		Lon:     *r.Lon,
		Country: r.Country,
		State:   r.State,
	}
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial standard"`
}

// stateResponse is the service state plus the display strings a client renders.
type stateResponse struct {
	weather.State
	Display displayStrings `json:"display"`
}

type displayStrings struct {
	LocationName string `json:"locationName"`
	StateCountry string `json:"stateCountry"`
	Coordinates  string `json:"coordinates"`
	Temperature  string `json:"temperature"`
	Description  string `json:"description"`
	Icon         string `json:"icon,omitempty"`
	UnitName     string `json:"unitName"`
	IsFavorite   bool   `json:"isFavorite"`
}

func newStateResponse(st weather.State) stateResponse {
	return stateResponse{
		State: st,
		Display: displayStrings{
			LocationName: st.LocationName(),
			StateCountry: st.StateCountryLabel(),
			Coordinates:  st.Coordinates(),
			Temperature:  st.Temperature(),
			Description:  st.MainDescription(),
			Icon:         st.WeatherIcon(),
			UnitName:     st.Unit.DisplayName(),
			IsFavorite:   st.IsFavorite(),
		},
	}
}
