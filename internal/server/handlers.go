package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"recordsrv/internal/shared"
	"recordsrv/internal/wire"
)

// Handler turns one parsed request into one response.
type Handler interface {
	ServeRequest(ctx context.Context, req *wire.Request) *wire.Response
}

type HandlerFunc func(ctx context.Context, req *wire.Request) *wire.Response

func (f HandlerFunc) ServeRequest(ctx context.Context, req *wire.Request) *wire.Response {
	return f(ctx, req)
}

type API struct {
	Store       Store
	OpenAPIPath string
	Logger      *log.Logger
}

func writeError(code int, msg string) *wire.Response {
	return wire.JSON(code, shared.ErrorResponse{Error: msg})
}

func writeMessage(msg string) *wire.Response {
	return wire.JSON(http.StatusOK, shared.MessageResponse{Message: msg})
}

func (a *API) ServeRequest(ctx context.Context, req *wire.Request) *wire.Response {
	route := Match(req.Method, req.Path)
	if route.Status != 0 {
		return wire.Empty(route.Status)
	}

	switch route.Action {
	case ActionOpenAPI:
		return a.openAPI()
	case ActionList:
		return a.list(ctx)
	case ActionGet:
		return a.get(ctx, route.ID)
	case ActionCreate:
		return a.create(ctx, req.Body)
	case ActionUpdate:
		return a.update(ctx, route.ID, req.Body)
	case ActionDelete:
		return a.delete(ctx, route.ID)
	}
	return wire.Empty(http.StatusNotFound)
}

func (a *API) openAPI() *wire.Response {
	b, err := os.ReadFile(a.OpenAPIPath)
	if err != nil {
		a.logf("api: openapi %s: %v", a.OpenAPIPath, err)
		return wire.Empty(http.StatusInternalServerError)
	}
	return &wire.Response{Status: http.StatusOK, ContentType: wire.ContentTypeYAML, Body: b}
}

func (a *API) list(ctx context.Context) *wire.Response {
	recs, err := a.Store.List(ctx)
	if err != nil {
		return a.storeError("list", err)
	}
	return wire.JSON(http.StatusOK, Views(recs))
}

func (a *API) get(ctx context.Context, id int64) *wire.Response {
	rec, err := a.Store.Get(ctx, id)
	if err != nil {
		return a.storeError("get", err)
	}
	return wire.JSON(http.StatusOK, rec.View())
}

func (a *API) create(ctx context.Context, body []byte) *wire.Response {
	name, err := wire.DecodeName(body)
	if err != nil {
		return wire.Empty(http.StatusBadRequest)
	}
	id, err := a.Store.Create(ctx, name)
	if err != nil {
		return a.storeError("create", err)
	}
	a.logf("api: created record id=%d", id)
	return writeMessage(shared.MsgInserted)
}

func (a *API) update(ctx context.Context, id int64, body []byte) *wire.Response {
	name, err := wire.DecodeName(body)
	if err != nil {
		return wire.Empty(http.StatusBadRequest)
	}
	if err := a.Store.Update(ctx, id, name); err != nil {
		return a.storeError("update", err)
	}
	return writeMessage(shared.MsgUpdated)
}

func (a *API) delete(ctx context.Context, id int64) *wire.Response {
	if err := a.Store.Delete(ctx, id); err != nil {
		return a.storeError("delete", err)
	}
	return writeMessage(shared.MsgDeleted)
}

// storeError maps a store failure to a status. Missing rows are 404,
// everything else is a 500 carrying the driver message.
func (a *API) storeError(op string, err error) *wire.Response {
	if errors.Is(err, ErrNotFound) {
		return writeError(http.StatusNotFound, shared.MsgNotFound)
	}
	a.logf("api: %s: %v", op, err)
	return writeError(http.StatusInternalServerError, err.Error())
}

func (a *API) logf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
