package validators

import "go.mongodb.org/mongo-driver/bson"

var MessageValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"thread_id",
			"sender_id",
			"recipient_id",
			"content",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"thread_id": bson.M{
				"bsonType":  "string",
				"minLength": 49,
				"maxLength": 49,
			},

			"sender_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"recipient_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"listing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"content": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 1000,
			},

			"is_read": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
