// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Dependency health",
                "responses": {"200": {"description": "OK"}, "206": {"description": "Degraded"}}
            }
        },
        "/webhooks/stripe": {
            "post": {
                "tags": ["billing"],
                "summary": "Stripe webhook receiver",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Rejected"}}
            }
        },
        "/v1/billing/tiers": {
            "get": {
                "tags": ["billing"],
                "summary": "Active subscription tiers",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/associations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["associations"],
                "summary": "Associations the caller belongs to",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["associations"],
                "summary": "Create an association owned by the caller",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/v1/associations/{associationId}/topics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["voting"],
                "summary": "List voting topics visible to the caller",
                "parameters": [{"type": "string", "name": "associationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["voting"],
                "summary": "Create a voting topic (admin)",
                "parameters": [{"type": "string", "name": "associationId", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/v1/associations/{associationId}/topics/{topicId}/votes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["voting"],
                "summary": "Cast a ballot on an active topic",
                "parameters": [
                    {"type": "string", "name": "associationId", "in": "path", "required": true},
                    {"type": "string", "name": "topicId", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid ballot"}, "409": {"description": "Topic not active"}}
            }
        },
        "/v1/associations/{associationId}/topics/{topicId}/results": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["voting"],
                "summary": "Tally for a topic",
                "parameters": [
                    {"type": "string", "name": "associationId", "in": "path", "required": true},
                    {"type": "string", "name": "topicId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/associations/{associationId}/meetings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["meetings"],
                "summary": "List meetings",
                "parameters": [{"type": "string", "name": "associationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["meetings"],
                "summary": "Create a draft meeting (admin)",
                "parameters": [{"type": "string", "name": "associationId", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/v1/associations/{associationId}/meetings/{meetingId}/schedule": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["meetings"],
                "summary": "Move a draft meeting to scheduled and send invitations",
                "parameters": [
                    {"type": "string", "name": "associationId", "in": "path", "required": true},
                    {"type": "string", "name": "meetingId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Illegal transition"}}
            }
        },
        "/v1/associations/{associationId}/meetings/{meetingId}/rsvp": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["meetings"],
                "summary": "Record or change the caller's RSVP",
                "parameters": [
                    {"type": "string", "name": "associationId", "in": "path", "required": true},
                    {"type": "string", "name": "meetingId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AssocHub API",
	Description:      "Residential association management: members, units, documents, meetings and voting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
