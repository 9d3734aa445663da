package model

import "time"

// Address is a customer's saved service location from the `addresses`
// table.  A booking always references one of the customer's own
// addresses; ownership is validated at booking creation.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning customer.
//  Street    – street line.
//  City      – city name.
//  State     – state or province.
//  ZipCode   – postal code.
//  Landmark  – optional free-text landmark hint.
//  IsDefault – whether this is the customer's default address.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Address struct {
    ID        uint64    // addresses.id
    UserID    uint64    // addresses.user_id
    Street    string    // addresses.street
    City      string    // addresses.city
    State     string    // addresses.state
    ZipCode   string    // addresses.zip_code
    Landmark  *string   // addresses.landmark (nullable)
    IsDefault bool      // addresses.is_default
    CreatedAt time.Time // addresses.created_at
    UpdatedAt time.Time // addresses.updated_at
}
