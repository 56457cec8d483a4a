// Package docs holds the Swagger document served at /swagger. It mirrors the
// annotations in internal/server and is regenerated with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@bookmarket.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Pings PostgreSQL and Redis. Either one failing answers 503.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth": {
            "post": {
                "description": "Reports whether the Firebase user is registered and returns an access token if so",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange a Firebase ID token",
                "parameters": [
                    {"description": "Firebase ID token", "name": "request", "in": "body", "required": true,
                     "schema": {"type": "object", "properties": {"firebaseTokenId": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates the user, account and profile and returns an access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a Firebase user",
                "parameters": [
                    {"description": "Registration request", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/validation.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Revokes the access token used for this request",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Get own profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Empty fields keep their current value",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update own profile",
                "parameters": [
                    {"description": "Profile fields", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/validation.ProfileUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/profile/upload": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Replace avatar",
                "parameters": [
                    {"type": "file", "description": "JPEG or PNG image", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "List open listings",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/predict": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the condition model on the image and prices the book without saving anything",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Grade a book image",
                "parameters": [
                    {"type": "file", "description": "JPEG or PNG image", "name": "file", "in": "formData", "required": true},
                    {"type": "number", "description": "Price the seller paid", "name": "buyPrice", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Search open listings by title",
                "parameters": [
                    {"type": "string", "description": "Title substring, case-insensitive", "name": "title", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/author": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "List own listings",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/author/post": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Grades the image, prices the book and publishes the listing",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Create a listing",
                "parameters": [
                    {"type": "file", "description": "JPEG or PNG image", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Author", "name": "author", "in": "formData", "required": true},
                    {"type": "string", "description": "Publisher", "name": "publisher", "in": "formData", "required": true},
                    {"type": "integer", "description": "Publish year", "name": "publishYear", "in": "formData", "required": true},
                    {"type": "number", "description": "Price the seller paid", "name": "buyPrice", "in": "formData", "required": true},
                    {"type": "string", "description": "ISBN", "name": "ISBN", "in": "formData", "required": true},
                    {"type": "string", "description": "Language", "name": "language", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/author/post/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Get own listing",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Re-grades the new image and replaces the listing fields",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Update own listing",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "JPEG or PNG image", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Author", "name": "author", "in": "formData", "required": true},
                    {"type": "string", "description": "Publisher", "name": "publisher", "in": "formData", "required": true},
                    {"type": "integer", "description": "Publish year", "name": "publishYear", "in": "formData", "required": true},
                    {"type": "number", "description": "Price the seller paid", "name": "buyPrice", "in": "formData", "required": true},
                    {"type": "number", "description": "Asking price", "name": "finalPrice", "in": "formData", "required": true},
                    {"type": "string", "description": "ISBN", "name": "ISBN", "in": "formData", "required": true},
                    {"type": "string", "description": "Language", "name": "language", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Delete own listing",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/author/post/{id}/sold": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Mark own listing as sold",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/book/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Counts one view of the listing",
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "Get a listing",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "models.Envelope": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "pagination": {"$ref": "#/definitions/models.PaginationMeta"},
                "status": {"type": "string"},
                "statusCode": {"type": "integer"}
            }
        },
        "models.PaginationMeta": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "validation.ProfileUpdate": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "adminAreaLocality": {"type": "string"},
                "cityLocality": {"type": "string"},
                "name": {"type": "string"},
                "phoneNumber": {"type": "string"}
            }
        },
        "validation.RegisterInput": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "administrationArea": {"type": "string"},
                "city": {"type": "string"},
                "firebaseTokenId": {"type": "string"},
                "phoneNumber": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Bookmarket API",
	Description:      "Used-book marketplace API: condition grading, pricing and listings",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
