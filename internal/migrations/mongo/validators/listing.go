package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"teacher_id",
			"title",
			"description",
			"category",
			"price",
			"duration",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"teacher_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Cooking",
					"Tech",
					"Languages",
					"Arts",
					"Fitness",
					"Business",
					"Other",
				},
			},

			"price": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"duration": bson.M{
				"bsonType": "int",
				"minimum":  15,
			},

			"location": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"type": bson.M{
						"bsonType": "string",
						"enum": []string{
							"in-person",
							"online",
							"both",
						},
					},
					"address": bson.M{"bsonType": "string"},
					"city":    bson.M{"bsonType": "string"},
				},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 3,
				"items":    bson.M{"bsonType": "string"},
			},

			"availability": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"days": bson.M{
						"bsonType": "array",
						"items": bson.M{
							"bsonType": "string",
							"enum": []string{
								"Monday",
								"Tuesday",
								"Wednesday",
								"Thursday",
								"Friday",
								"Saturday",
								"Sunday",
							},
						},
					},
					"time_slots": bson.M{
						"bsonType": "array",
						"items":    bson.M{"bsonType": "string"},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"inactive",
					"draft",
				},
			},

			"views": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"favorites_count": bson.M{
				"bsonType": "int",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
