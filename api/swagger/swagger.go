package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassTrack API",
        "description": "Role-based attendance tracking for sections, enrollments and attendance records",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Subjects", "description": "Subject catalogue"},
        {"name": "Teachers", "description": "Teacher roster management"},
        {"name": "Sections", "description": "Section scheduling, rosters and exports"},
        {"name": "Enrollments", "description": "Section membership"},
        {"name": "Attendance", "description": "Attendance marking and queries"},
        {"name": "Me", "description": "Self-scoped student views"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username already taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid username or password"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "security": [{"BearerAuth": []}],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "security": [{"BearerAuth": []}],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "security": [{"BearerAuth": []}],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete student and all dependent records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "security": [{"BearerAuth": []}],
                "summary": "List subjects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Subjects"],
                "security": [{"BearerAuth": []}],
                "summary": "Create subject",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{id}": {
            "delete": {
                "tags": ["Subjects"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete subject including its teachers, sections, enrollments and attendance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "security": [{"BearerAuth": []}],
                "summary": "List teachers with their subject",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "security": [{"BearerAuth": []}],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Subject does not exist"}
                }
            }
        },
        "/teachers/{id}": {
            "delete": {
                "tags": ["Teachers"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete teacher including their sections, enrollments and attendance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sections": {
            "get": {
                "tags": ["Sections"],
                "security": [{"BearerAuth": []}],
                "summary": "List sections with teacher and subject detail",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sections"],
                "security": [{"BearerAuth": []}],
                "summary": "Create section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher/group/timeslot conflict"}
                }
            }
        },
        "/sections/{id}": {
            "delete": {
                "tags": ["Sections"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete section including its enrollments and attendance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sections/{id}/roster": {
            "get": {
                "tags": ["Sections"],
                "security": [{"BearerAuth": []}],
                "summary": "List students enrolled in a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sections/{id}/export": {
            "get": {
                "tags": ["Sections"],
                "security": [{"BearerAuth": []}],
                "summary": "Export a section attendance report",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Enroll a student into a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student already enrolled"}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "security": [{"BearerAuth": []}],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "security": [{"BearerAuth": []}],
                "summary": "Record an attendance entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Student or section does not exist"}
                }
            }
        },
        "/me/sections": {
            "get": {
                "tags": ["Me"],
                "security": [{"BearerAuth": []}],
                "summary": "List sections the authenticated student is enrolled in",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Account is not linked to a student"}
                }
            }
        },
        "/me/attendance": {
            "get": {
                "tags": ["Me"],
                "security": [{"BearerAuth": []}],
                "summary": "List attendance records of the authenticated student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Account is not linked to a student"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["TEACHER", "STUDENT"]},
                "student_id": {"type": "string"},
                "teacher_id": {"type": "string"}
            },
            "required": ["username", "password", "role"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            },
            "required": ["id", "first_name", "last_name"]
        },
        "CreateSubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["name"]
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "subject_id": {"type": "string"}
            },
            "required": ["first_name", "last_name", "subject_id"]
        },
        "CreateSectionRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "group_label": {"type": "string", "enum": ["A", "B", "C", "D", "F"]},
                "timeslot": {"type": "string"}
            },
            "required": ["teacher_id", "group_label", "timeslot"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "section_id": {"type": "string"}
            },
            "required": ["student_id", "section_id"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "section_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE"]}
            },
            "required": ["student_id", "section_id", "date", "status"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
