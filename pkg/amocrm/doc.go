// Package amocrm defines the public types of the amoCRM client: models and
// their field registries, API generations, results, errors and the
// Requester capability the models call.
//
// Every model can be composed for either the legacy API family
// (/private/api/v2/json) or the current one (/api/v4):
//
//	company := client.Company()
//	_ = company.Set("name", "Acme")
//	_ = company.Set("tags", []string{"vip"})
//	result, err := company.Add(ctx, amocrm.Current)
//
// Writes called without a batch operate on the receiving model itself.
package amocrm
