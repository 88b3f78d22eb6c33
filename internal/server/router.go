package server

import (
	"strconv"
	"strings"
)

type Action int

const (
	ActionNone Action = iota
	ActionOpenAPI
	ActionList
	ActionCreate
	ActionGet
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionOpenAPI:
		return "openapi"
	case ActionList:
		return "list"
	case ActionCreate:
		return "create"
	case ActionGet:
		return "get"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "none"
}

// Route is the outcome of dispatch. Status is non-zero when the request is
// rejected before any action runs.
type Route struct {
	Action Action
	ID     int64
	Status int
}

const (
	openAPIPath   = "/openapi.yaml"
	recordsPrefix = "/records/"
)

// Match maps a method and request target to a Route. Rules apply in order:
// the openapi document, the collection, single records, then 405 for unsupported
// methods and 404 for anything else.
func Match(method, target string) Route {
	path, _, _ := strings.Cut(target, "?")

	switch method {
	case "GET", "POST", "PUT", "DELETE":
	default:
		return Route{Status: 405}
	}

	switch {
	case method == "GET" && path == openAPIPath:
		return Route{Action: ActionOpenAPI}
	case method == "GET" && path == "/":
		return Route{Action: ActionList}
	case method == "POST" && path == "/":
		return Route{Action: ActionCreate}
	}

	if !strings.HasPrefix(path, recordsPrefix) {
		return Route{Status: 404}
	}
	var action Action
	switch method {
	case "GET":
		action = ActionGet
	case "PUT":
		action = ActionUpdate
	case "DELETE":
		action = ActionDelete
	default:
		return Route{Status: 404}
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(path, recordsPrefix), 10, 64)
	if err != nil {
		return Route{Status: 400}
	}
	return Route{Action: action, ID: id}
}
