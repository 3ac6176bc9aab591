package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User struct matches the document in MongoDB. Role is "user" for buyers
// and "admin" for the seeded administrator account.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
}
