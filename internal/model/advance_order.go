package model

import "time"

// RequestType classifies an advance order request.
type RequestType string

const (
	RequestTypeSystemMessage RequestType = "System Message"
	RequestTypeBuyerInquiry  RequestType = "Buyer Inquiry"
)

// RequestTypes lists every valid request type.
var RequestTypes = []RequestType{RequestTypeSystemMessage, RequestTypeBuyerInquiry}

// ParseRequestType validates a request type label.
func ParseRequestType(s string) (RequestType, bool) {
	for _, rt := range RequestTypes {
		if string(rt) == s {
			return rt, true
		}
	}
	return "", false
}

// AdvanceOrder is an advance request mirrored from the remote store.
// Created, viewed, deleted; never mutated.
type AdvanceOrder struct {
	ID          int64       `json:"id"`
	OrderID     string      `json:"orderId"`
	ShopID      string      `json:"shopId"`
	RequestType RequestType `json:"requestType"`
	Message     string      `json:"message"`
	CreatedAt   time.Time   `json:"createdAt"`
	Ref         Ref         `json:"-"`
}
