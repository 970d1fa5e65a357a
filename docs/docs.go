// Package docs holds the OpenAPI document served at /swagger. Regenerate with `swag init`.
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
        "/api/posts": {
            "get": {
                "description": "Lists every post that has not been deleted, ordered by id.",
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "List posts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Post"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            },
            "post": {
                "description": "Creates a post owned by the logged-in user. Any userId in the body is ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Create a post",
                "parameters": [
                    {"description": "Post", "name": "post", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Post"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/api/posts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Get a post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Post"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "404": {"description": "Post not found or deleted", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            },
            "put": {
                "description": "Replaces title and content. Only the owner may update.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Update a post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true},
                    {"description": "Post", "name": "post", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Post"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "404": {"description": "Post not found or deleted", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            },
            "delete": {
                "description": "Soft-deletes the post. Only the owner may delete.",
                "tags": ["Posts"],
                "summary": "Delete a post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "404": {"description": "Post not found or deleted", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/api/users/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PublicUser"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/api/users/register": {
            "post": {
                "description": "Creates a user account. Every invalid field is reported at once.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "New user", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.PublicUser"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        },
        "/login": {
            "post": {
                "description": "Verifies the credentials and sets the session cookie.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials (form logins send the email as username)", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PublicUser"}},
                    "400": {"description": "Malformed body", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/api.ErrorBody"}},
                    "429": {"description": "Too many login attempts", "schema": {"type": "string"}}
                }
            }
        },
        "/logout": {
            "post": {
                "description": "Revokes the current session, if any, and clears the cookie.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/access.MessageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "access.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Logged out"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "api.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "authentication required"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/types.FieldError"}},
                "request_id": {"type": "string"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "types.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "secret1"}
            }
        },
        "types.Post": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "body"},
                "createdAt": {"type": "string"},
                "deletedAt": {"type": "string"},
                "id": {"type": "integer", "example": 1},
                "ownerId": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Hi"},
                "updatedAt": {"type": "string"}
            }
        },
        "types.PostRequest": {
            "type": "object",
            "required": ["content", "title"],
            "properties": {
                "content": {"type": "string", "example": "body"},
                "title": {"type": "string", "maxLength": 255, "example": "Hi"}
            }
        },
        "types.PublicUser": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "id": {"type": "integer", "example": 1},
                "userName": {"type": "string", "example": "alice"}
            }
        },
        "types.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "userName"],
            "properties": {
                "email": {"type": "string", "maxLength": 255, "example": "alice@example.com"},
                "password": {"type": "string", "minLength": 5, "example": "secret1"},
                "userName": {"type": "string", "maxLength": 20, "example": "alice"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "go-simple-crud API",
	Description:      "Session-authenticated posts with owner-only mutation and soft delete.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
