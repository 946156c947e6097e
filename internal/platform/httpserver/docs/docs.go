// Package docs holds the OpenAPI document served under /swagger/.
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
        "/submissions": {
            "get": {
                "tags": [
                    "submissions"
                ],
                "summary": "List pending submissions",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "entity_type",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "composite_status",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "submitted_by",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}": {
            "get": {
                "tags": [
                    "submissions"
                ],
                "summary": "Get a submission with its composite status",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/fields/{field_key}/approve": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Approve a field",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "field_key",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/fields/{field_key}/decline": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Decline a field",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "field_key",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/videos/{video_id}/approve": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Approve a video",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "video_id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/videos/{video_id}/decline": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Decline a video",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "video_id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/resubmit": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Resubmit declined items",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/feedback": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Send feedback for a declined submission",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/{submission_id}/save": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Save an approved submission",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "submission_id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/submissions/bulk-approve": {
            "post": {
                "tags": [
                    "submissions"
                ],
                "summary": "Approve many submissions",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "header",
                        "name": "Idempotency-Key",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/change-sets": {
            "get": {
                "tags": [
                    "change-sets"
                ],
                "summary": "List change sets",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "status",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "target_entity_id",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            },
            "post": {
                "tags": [
                    "change-sets"
                ],
                "summary": "Propose a change set",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/change-sets/{change_set_id}/diff": {
            "get": {
                "tags": [
                    "change-sets"
                ],
                "summary": "Diff view of a change set",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "change_set_id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/change-sets/{change_set_id}/approve": {
            "post": {
                "tags": [
                    "change-sets"
                ],
                "summary": "Approve a change set",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "change_set_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/change-sets/{change_set_id}/reject": {
            "post": {
                "tags": [
                    "change-sets"
                ],
                "summary": "Reject a change set",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "path",
                        "name": "change_set_id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        },
        "/change-sets/bulk-approve": {
            "post": {
                "tags": [
                    "change-sets"
                ],
                "summary": "Approve many change sets",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "header",
                        "name": "X-User-Id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "header",
                        "name": "Idempotency-Key",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "401": {
                        "description": "missing user"
                    },
                    "404": {
                        "description": "not found"
                    },
                    "409": {
                        "description": "invalid state"
                    },
                    "502": {
                        "description": "listing api failure"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/review/v1",
	Schemes:          []string{},
	Title:            "Review Desk API",
	Description:      "Field-level review of listing and post submissions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
