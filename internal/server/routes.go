package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/picontrol/eversolo2hub/internal/assets"
	"github.com/picontrol/eversolo2hub/internal/core/domain"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

type driverResponse struct {
	Id                   string `json:"driver_id"`
	DisplayName          string `json:"display_name"`
	Description          string `json:"description"`
	AuthenticationMethod string `json:"authentication_method"`
	RequiresPairing      bool   `json:"requires_pairing"`
	Version              string `json:"version"`
}

type layoutResponse struct {
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Grid   domain.RemoteLayout `json:"grid"`
}

type commandResponse struct {
	Id    int    `json:"command_id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

type startPairingRequest struct {
	RemoteName string `json:"remote_name"`
}

type startPairingResponse struct {
	PairingRequest    string `json:"pairing_request"`
	DeviceProvidesPin bool   `json:"device_provides_pin"`
}

type finalizePairingRequest struct {
	Credentials string `json:"credentials"`
	DevicePin   string `json:"device_pin"`
}

type finalizePairingResponse struct {
	DeviceHasPaired bool `json:"device_has_paired"`
}

type readyResponse struct {
	Ready bool `json:"ready"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	e.GET("/driver", s.DriverHandler)
	e.GET("/driver/layout", s.DriverLayoutHandler)
	e.GET("/driver/icons/:name", s.DriverIconHandler)

	e.GET("/devices", s.ListDevicesHandler)
	e.GET("/devices/:deviceId", s.GetDeviceHandler)
	e.POST("/devices/:deviceId/pairing", s.StartPairingHandler)
	e.POST("/devices/:deviceId/pairing/:requestId/finalize", s.FinalizePairingHandler)
	e.GET("/devices/:deviceId/commands", s.ListCommandsHandler)
	e.GET("/devices/:deviceId/commands/:commandId", s.GetCommandHandler)
	e.POST("/devices/:deviceId/commands/:commandId/execute", s.ExecuteCommandHandler)
	e.GET("/devices/:deviceId/ready", s.DeviceReadyHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) DriverHandler(c echo.Context) error {
	descriptor := s.registry.Descriptor()
	return c.JSON(http.StatusOK, driverResponse{
		Id:                   descriptor.Id,
		DisplayName:          descriptor.DisplayName,
		Description:          descriptor.Description,
		AuthenticationMethod: descriptor.AuthenticationMethod,
		RequiresPairing:      descriptor.RequiresPairing,
		Version:              descriptor.Version,
	})
}

func (s *Server) DriverLayoutHandler(c echo.Context) error {
	width, height := service.LayoutSize()
	return c.JSON(http.StatusOK, layoutResponse{
		Width:  width,
		Height: height,
		Grid:   service.Layout(),
	})
}

func (s *Server) DriverIconHandler(c echo.Context) error {
	data, err := s.icons.Icon(c.Param("name"))
	if err != nil {
		if errors.Is(err, assets.ErrIconNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func (s *Server) ListDevicesHandler(c echo.Context) error {
	devices, err := s.registry.ListDevices(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, devices)
}

func (s *Server) GetDeviceHandler(c echo.Context) error {
	device, err := s.registry.GetDevice(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, device)
}

func (s *Server) StartPairingHandler(c echo.Context) error {
	device, err := s.registry.GetDevice(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	var req startPairingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid pairing request"})
	}
	pairingRequest, providesPin := s.registry.StartPairing(c.Request().Context(), device, req.RemoteName)
	return c.JSON(http.StatusOK, startPairingResponse{
		PairingRequest:    pairingRequest,
		DeviceProvidesPin: providesPin,
	})
}

func (s *Server) FinalizePairingHandler(c echo.Context) error {
	if _, err := s.registry.GetDevice(c.Request().Context(), c.Param("deviceId")); err != nil {
		return s.errorJSON(c, err)
	}
	var req finalizePairingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid pairing request"})
	}
	paired := s.registry.FinalizePairing(c.Request().Context(), c.Param("requestId"), req.Credentials, req.DevicePin)
	return c.JSON(http.StatusOK, finalizePairingResponse{DeviceHasPaired: paired})
}

func (s *Server) ListCommandsHandler(c echo.Context) error {
	driver, err := s.registry.CreateDriver(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	commands := driver.Commands()
	response := make([]commandResponse, 0, len(commands))
	for _, command := range commands {
		response = append(response, commandResponse{
			Id:    int(command.Id),
			Title: command.Title,
			Icon:  command.Icon,
		})
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) GetCommandHandler(c echo.Context) error {
	driver, err := s.registry.CreateDriver(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	commandId, ok := parseCommandId(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid command id"})
	}
	command, err := driver.Command(commandId)
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, commandResponse{
		Id:    int(command.Id),
		Title: command.Title,
		Icon:  command.Icon,
	})
}

func (s *Server) ExecuteCommandHandler(c echo.Context) error {
	driver, err := s.registry.CreateDriver(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	commandId, ok := parseCommandId(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid command id"})
	}
	if err := driver.Execute(c.Request().Context(), commandId); err != nil {
		return s.errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) DeviceReadyHandler(c echo.Context) error {
	driver, err := s.registry.CreateDriver(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, readyResponse{Ready: driver.IsReady(c.Request().Context())})
}

func parseCommandId(c echo.Context) (domain.CommandID, bool) {
	rawId, err := strconv.Atoi(c.Param("commandId"))
	if err != nil {
		return 0, false
	}
	return domain.CommandID(rawId), true
}

// errorJSON maps driver errors onto HTTP statuses. Unknown devices and
// commands are 404, transport and device protocol failures are 502.
func (s *Server) errorJSON(c echo.Context, err error) error {
	var networkErr *eversolo.NetworkError
	var protocolErr *eversolo.ProtocolError
	switch {
	case errors.Is(err, domain.ErrDeviceNotFound) || errors.Is(err, domain.ErrCommandNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &networkErr) || errors.As(err, &protocolErr):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
