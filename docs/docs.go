// Package docs registra el documento OpenAPI servido en /swagger.
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
        "/clients": {
            "get": {
                "tags": ["clients"],
                "summary": "Listar clientes",
                "parameters": [
                    {"type": "string", "description": "Busca en nombre, teléfono y cédula", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/clients.clientResponse"}}}
                }
            },
            "post": {
                "tags": ["clients"],
                "summary": "Registrar cliente con mascotas",
                "parameters": [
                    {"description": "Cliente y mascotas", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/clients.registerClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/clients.registerClientResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "referrer not found", "schema": {"type": "string"}}
                }
            }
        },
        "/clients/{clientID}": {
            "get": {
                "tags": ["clients"],
                "summary": "Obtener cliente",
                "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/clients.clientDetailResponse"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "patch": {
                "tags": ["clients"],
                "summary": "Actualizar datos de contacto",
                "parameters": [
                    {"type": "string", "name": "clientID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/clients.updateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/clients.clientResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["clients"],
                "summary": "Eliminar cliente",
                "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "not found", "schema": {"type": "string"}},
                    "409": {"description": "client has referrals", "schema": {"type": "string"}}
                }
            }
        },
        "/clients/{clientID}/referrals": {
            "get": {
                "tags": ["clients"],
                "summary": "Referidos directos y de segunda línea",
                "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/clients.referralSummaryResponse"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/clients/{clientID}/rewards": {
            "get": {
                "tags": ["rewards"],
                "summary": "Recompensas de un cliente",
                "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/rewards.rewardResponse"}}},
                    "404": {"description": "client not found", "schema": {"type": "string"}}
                }
            }
        },
        "/clients/{clientID}/rewards/evaluate": {
            "post": {
                "tags": ["rewards"],
                "summary": "Re-evaluar recompensas",
                "parameters": [{"type": "string", "name": "clientID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/rewards.rewardResponse"}}},
                    "404": {"description": "client not found", "schema": {"type": "string"}}
                }
            }
        },
        "/rewards": {
            "get": {
                "tags": ["rewards"],
                "summary": "Listar recompensas",
                "parameters": [
                    {"enum": ["PENDING", "CLAIMED"], "type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/rewards.rewardResponse"}}},
                    "400": {"description": "invalid status", "schema": {"type": "string"}}
                }
            }
        },
        "/rewards/{rewardID}/claim": {
            "post": {
                "tags": ["rewards"],
                "summary": "Reclamar recompensa",
                "parameters": [
                    {"type": "string", "name": "rewardID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/rewards.claimRewardRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rewards.rewardResponse"}},
                    "400": {"description": "description required", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}},
                    "409": {"description": "already claimed", "schema": {"type": "string"}}
                }
            }
        },
        "/clients/{clientID}/visits": {
            "get": {
                "tags": ["visits"],
                "summary": "Listar visitas",
                "parameters": [
                    {"type": "string", "name": "clientID", "in": "path", "required": true},
                    {"type": "string", "name": "pet_id", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/visits.visitResponse"}}},
                    "404": {"description": "client not found", "schema": {"type": "string"}}
                }
            },
            "post": {
                "tags": ["visits"],
                "summary": "Registrar visita",
                "parameters": [
                    {"type": "string", "name": "clientID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/visits.createVisitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/visits.visitResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "client not found", "schema": {"type": "string"}},
                    "422": {"description": "pet does not belong to client", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "clients.petRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "species": {"type": "string"}, "breed": {"type": "string"}}
        },
        "clients.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "client_id": {"type": "string"}, "name": {"type": "string"},
                "species": {"type": "string"}, "breed": {"type": "string"}, "created_at": {"type": "string"}
            }
        },
        "clients.registerClientRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}, "phone": {"type": "string"}, "email": {"type": "string"},
                "cedula": {"type": "string"}, "referrer_id": {"type": "string"}, "registration_date": {"type": "string"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/clients.petRequest"}}
            }
        },
        "clients.updateClientRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "phone": {"type": "string"}, "email": {"type": "string"}, "cedula": {"type": "string"}}
        },
        "clients.clientResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "name": {"type": "string"}, "phone": {"type": "string"},
                "email": {"type": "string"}, "cedula": {"type": "string"}, "registration_date": {"type": "string"},
                "referrer_id": {"type": "string"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/clients.petResponse"}},
                "created_at": {"type": "string"}, "updated_at": {"type": "string"}
            }
        },
        "clients.clientDetailResponse": {
            "allOf": [
                {"$ref": "#/definitions/clients.clientResponse"},
                {"type": "object", "properties": {"direct_referrals": {"type": "integer"}, "second_level_referrals": {"type": "integer"}}}
            ]
        },
        "clients.registerClientResponse": {
            "allOf": [
                {"$ref": "#/definitions/clients.clientResponse"},
                {"type": "object", "properties": {"rewards_granted": {"type": "integer"}, "warning": {"type": "string"}}}
            ]
        },
        "clients.referralSummaryResponse": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "direct_count": {"type": "integer"},
                "second_level_count": {"type": "integer"},
                "direct_referrals": {"type": "array", "items": {"$ref": "#/definitions/clients.clientResponse"}},
                "second_level_referrals": {"type": "array", "items": {"$ref": "#/definitions/clients.clientResponse"}}
            }
        },
        "rewards.claimRewardRequest": {
            "type": "object",
            "properties": {"description": {"type": "string"}}
        },
        "rewards.rewardResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "client_id": {"type": "string"},
                "type": {"type": "string", "enum": ["DIRECT", "SECOND_LEVEL"]},
                "status": {"type": "string", "enum": ["PENDING", "CLAIMED"]},
                "description": {"type": "string"}, "date_earned": {"type": "string"},
                "date_claimed": {"type": "string"}, "claimed_description": {"type": "string"}
            }
        },
        "visits.createVisitRequest": {
            "type": "object",
            "properties": {"pet_id": {"type": "string"}, "visit_date": {"type": "string"}, "reason": {"type": "string"}, "notes": {"type": "string"}}
        },
        "visits.visitResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "client_id": {"type": "string"}, "pet_id": {"type": "string"},
                "visit_date": {"type": "string"}, "reason": {"type": "string"}, "notes": {"type": "string"},
                "recorded_by": {"type": "string"}, "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clinic Referrals API",
	Description:      "Clientes, referidos y recompensas de la clínica veterinaria.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
