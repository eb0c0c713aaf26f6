// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue an access token",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a parent",
                "parameters": [
                    {"description": "Parent credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.userCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/verify-parent-for-logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Verify parent password for child logout",
                "parameters": [
                    {"description": "Child username and parent password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.verifyLogoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.verifyLogoutResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/children/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "List children",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.User"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "Create a child account",
                "parameters": [
                    {"description": "Child credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.userCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/children/{child_id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "Delete a child account",
                "parameters": [{"type": "string", "description": "Child id", "name": "child_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/searches/log": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["searches"],
                "summary": "Log a blocked search",
                "parameters": [
                    {"description": "Child username and query", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.logSearchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.BlockedSearch"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/searches/{child_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["searches"],
                "summary": "List a child's blocked searches",
                "parameters": [{"type": "string", "description": "Child id", "name": "child_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.BlockedSearch"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/searches/clear/{child_id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["searches"],
                "summary": "Clear a child's blocked searches",
                "parameters": [{"type": "string", "description": "Child id", "name": "child_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.clearSearchesResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "parent_id": {"type": "string"}
            }
        },
        "domain.BlockedSearch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "search_query": {"type": "string"},
                "child_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "handler.errorResponse": {"type": "object", "properties": {"detail": {"type": "string"}}},
        "handler.tokenResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}}},
        "handler.userCreateRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.verifyLogoutRequest": {
            "type": "object",
            "required": ["child_username", "parent_password"],
            "properties": {"child_username": {"type": "string"}, "parent_password": {"type": "string"}}
        },
        "handler.verifyLogoutResponse": {"type": "object", "properties": {"verified": {"type": "boolean"}}},
        "handler.logSearchRequest": {
            "type": "object",
            "required": ["child_username", "search_query"],
            "properties": {"child_username": {"type": "string"}, "search_query": {"type": "string"}}
        },
        "handler.messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.clearSearchesResponse": {"type": "object", "properties": {"message": {"type": "string"}, "deleted_count": {"type": "integer"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Parental Control API",
	Description:      "Parent and child accounts with blocked-search history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
