//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/stretchr/testify/suite"
)

type AccountIntegrationTestSuite struct {
	suite.Suite

	config *TestConfig
	client amocrm.Client
	ctx    context.Context
	stamp  string
}

func (s *AccountIntegrationTestSuite) SetupSuite() {
	s.config = LoadTestConfig()
	s.config.SkipIfMissingConfig(s.T())

	s.client = s.config.NewClient(s.T())
	s.ctx = context.Background()
	s.stamp = fmt.Sprintf("it-%d", time.Now().Unix())
}

func (s *AccountIntegrationTestSuite) TestCurrentAccount() {
	account, err := s.client.Account().Current(s.ctx, amocrm.Current, false, nil)
	s.Require().NoError(err)
	s.NotEmpty(account["id"])
	s.NotEmpty(account["subdomain"])
}

func (s *AccountIntegrationTestSuite) TestUsers() {
	users, err := s.client.Account().Users(s.ctx, nil)
	s.Require().NoError(err)
	s.NotEmpty(users)

	id, ok := users[0]["id"].(float64)
	s.Require().True(ok)

	user, err := s.client.Account().User(s.ctx, int(id), nil)
	s.Require().NoError(err)
	s.InDelta(id, user["id"], 0)
}

func (s *AccountIntegrationTestSuite) TestCompanyLifecycle() {
	company := s.client.Company()
	s.Require().NoError(company.Set("name", "Integration "+s.stamp))
	s.Require().NoError(company.Set("tags", []string{s.stamp}))

	added, err := company.Add(s.ctx, amocrm.Current)
	s.Require().NoError(err)

	id, ok := added.ID()
	s.Require().True(ok)

	update := s.client.Company()
	s.Require().NoError(update.Set("id", id))
	s.Require().NoError(update.Set("name", "Integration "+s.stamp+" renamed"))

	_, err = update.Update(s.ctx, amocrm.Current, amocrm.Now())
	s.Require().NoError(err)

	fetched, err := s.client.Company().One(s.ctx, id, nil)
	s.Require().NoError(err)
	s.Equal("Integration "+s.stamp+" renamed", fetched["name"])
}

func (s *AccountIntegrationTestSuite) TestLeadLinks() {
	lead := s.client.Lead()
	s.Require().NoError(lead.Set("name", "Integration lead "+s.stamp))

	added, err := lead.Add(s.ctx, amocrm.Current)
	s.Require().NoError(err)

	leadID, ok := added.ID()
	s.Require().True(ok)

	company := s.client.Company()
	s.Require().NoError(company.Set("name", "Integration link "+s.stamp))

	addedCompany, err := company.Add(s.ctx, amocrm.Current)
	s.Require().NoError(err)

	companyID, ok := addedCompany.ID()
	s.Require().True(ok)

	link := s.client.Link()
	s.Require().NoError(link.SetValues(amocrm.Record{
		"from": amocrm.EntityLeads, "from_id": leadID,
		"to": amocrm.EntityCompanies, "to_id": companyID,
	}))

	_, err = link.Link(s.ctx, amocrm.Current)
	s.Require().NoError(err)

	links, err := s.client.Link().List(s.ctx, amocrm.Current, amocrm.LinkQuery{EntityType: amocrm.EntityLeads, EntityID: leadID})
	s.Require().NoError(err)
	s.NotEmpty(links)

	_, err = link.Unlink(s.ctx, amocrm.Current)
	s.Require().NoError(err)
}

func TestAccountIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AccountIntegrationTestSuite))
}
