package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/annel0/blockverse-tweaks/internal/app"
	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world"
	"github.com/gin-gonic/gin"
)

var errWrongDimension = errors.New("измерение не обслуживается этим сервером")

// onTick выполняет fn в потоке тиков мира и ждёт результата
func (rs *RestServer) onTick(c *gin.Context, fn func(w *world.World)) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.tickWait)
	defer cancel()

	err := rs.world.Do(ctx, fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, world.ErrQueueFull):
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Message: "Очередь команд мира переполнена"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, GenericResponse{Message: "Мир не ответил вовремя"})
	default:
		c.JSON(http.StatusInternalServerError, GenericResponse{Message: err.Error()})
	}
	return false
}

// spawnerPos разбирает :dim/:x/:y/:z
func (rs *RestServer) spawnerPos(c *gin.Context) (vec.Vec3, error) {
	dim, ok := resource.TryParse(c.Param("dim"))
	if !ok {
		return vec.Vec3{}, errors.New("неверный идентификатор измерения")
	}
	if dim != rs.world.Dimension() {
		return vec.Vec3{}, errWrongDimension
	}
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		n, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return vec.Vec3{}, errors.New("неверная координата " + name)
		}
		coords[i] = n
	}
	return vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func (rs *RestServer) badPos(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errWrongDimension) {
		status = http.StatusNotFound
	}
	c.JSON(status, GenericResponse{Message: err.Error()})
}

func (rs *RestServer) handleFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: rs.tweaks.Features()})
}

// handleListSpawners: ?disabled=true|false фильтрует по состоянию
func (rs *RestServer) handleListSpawners(c *gin.Context) {
	var infos []app.SpawnerInfo
	if !rs.onTick(c, func(w *world.World) { infos = rs.tweaks.InspectAll(w) }) {
		return
	}

	if q := c.Query("disabled"); q != "" {
		want, err := strconv.ParseBool(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{Message: "Неверное значение disabled"})
			return
		}
		filtered := infos[:0]
		for _, info := range infos {
			if info.Disabled == want {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data: gin.H{
			"total":    len(infos),
			"spawners": infos,
		},
	})
}

func (rs *RestServer) handleGetSpawner(c *gin.Context) {
	pos, err := rs.spawnerPos(c)
	if err != nil {
		rs.badPos(c, err)
		return
	}

	var (
		info  app.SpawnerInfo
		found bool
	)
	if !rs.onTick(c, func(w *world.World) {
		sp, ok := w.SpawnerEntityAt(pos)
		if !ok {
			return
		}
		info, found = rs.tweaks.Inspect(w, sp), true
	}) {
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{Message: app.ErrSpawnerNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: info})
}

// handleResetSpawner обнуляет счётчик и включает спаунер
func (rs *RestServer) handleResetSpawner(c *gin.Context) {
	pos, err := rs.spawnerPos(c)
	if err != nil {
		rs.badPos(c, err)
		return
	}

	var (
		info     app.SpawnerInfo
		resetErr error
	)
	if !rs.onTick(c, func(w *world.World) { info, resetErr = rs.tweaks.ResetAt(w, pos) }) {
		return
	}
	if errors.Is(resetErr, app.ErrSpawnerNotFound) {
		c.JSON(http.StatusNotFound, GenericResponse{Message: resetErr.Error()})
		return
	}
	if resetErr != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{Message: resetErr.Error()})
		return
	}

	if claims, ok := claimsFrom(c); ok {
		rs.log.Info("Спаунер %s сброшен оператором %s", info.Key, claims.Username)
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Спаунер сброшен", Data: info})
}

// handleReloadConfig принимает YAML в теле запроса; пустое тело перечитывает файл конфигурации
func (rs *RestServer) handleReloadConfig(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "Не удалось прочитать тело запроса"})
		return
	}

	var cfg *config.Config
	switch {
	case len(body) > 0:
		cfg, err = config.Parse(body)
	case rs.configPath != "":
		cfg, err = config.Load(rs.configPath)
	default:
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "Файл конфигурации не задан, передайте YAML в теле запроса"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: err.Error()})
		return
	}

	if err := rs.tweaks.Reload(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Конфигурация перезагружена",
		Data:    rs.tweaks.Features(),
	})
}
