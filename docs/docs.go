// Package docs registers the OpenAPI document served at /swagger/*any.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/": {
            "get": {
                "description": "Reports that the API is up.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness",
                "operationId": "status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StatusResponse"}}
                }
            }
        },
        "/posts": {
            "get": {
                "description": "Returns the user's posts newest first. Without user_id the list is empty in user-scoped mode, otherwise every post in insertion order. Supports weak ETag via If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "List posts",
                "operationId": "listPosts",
                "parameters": [
                    {"type": "string", "example": "user-42", "description": "Owner filter (exact match)", "name": "user_id", "in": "query"},
                    {"minimum": 0, "type": "integer", "default": 0, "description": "Maximum items (0 = all)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Post"}},
                        "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}
                    },
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Generates an Instagram caption and a Twitter post for the content in the given tone and stores them. Generation failures return HTTP 200 with a degraded payload and store nothing; without model credentials the body is {\"error\":\"API Key missing\"}.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Generate a post from text",
                "operationId": "createPost",
                "parameters": [
                    {"description": "Post input", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreatePostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Post"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/upload-image": {
            "post": {
                "description": "Downscales the image to at most 800px, generates copy for it in the given tone, and stores the post with the JPEG as base64 image_data. Generation failures return HTTP 500.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Posts"],
                "summary": "Generate a post from an image",
                "operationId": "uploadImage",
                "parameters": [
                    {"type": "file", "description": "Image (PNG, JPEG, GIF, WebP, BMP, TIFF)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "default": "Professional", "description": "Tone", "name": "tone", "in": "formData"},
                    {"type": "string", "description": "Owner", "name": "user_id", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Post"}},
                    "400": {"description": "Missing or invalid image", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Generation or storage failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "string"},
                "content": {"type": "string"},
                "tone": {"type": "string"},
                "instagram_version": {"type": "string"},
                "twitter_version": {"type": "string"},
                "image_prompt": {"type": "string"},
                "image_seed": {"type": "integer"},
                "is_upload": {"type": "boolean"},
                "image_data": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handlers.CreatePostRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string", "example": "user-42"},
                "content": {"type": "string", "example": "Grand opening of our new coffee shop downtown"},
                "tone": {"type": "string", "example": "Casual"}
            }
        },
        "handlers.ConfigErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "API Key missing"}}
        },
        "handlers.DegradedResponse": {
            "type": "object",
            "properties": {
                "instagram_version": {"type": "string", "example": "Error: malformed generation output"},
                "twitter_version": {"type": "string", "example": "Please try again."}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "resource not found"}
            }
        },
        "handlers.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "AI Social Media API is Live"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Social Posts API",
	Description:      "Generates Instagram captions and Twitter posts from text or images with a hosted generative model.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
