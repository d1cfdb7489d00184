package adapter

const fulfillmentFields = `
      status
      displayStatus
      createdAt
      trackingInfo(first: 10) {
        number
        url
        company
      }`

const orderByIDQuery = `query OrderFulfillments($id: ID!) {
  order(id: $id) {
    id
    legacyResourceId
    name
    fulfillments(first: 25) {` + fulfillmentFields + `
    }
  }
}`

const orderSearchQuery = `query OrderSearch($query: String!) {
  orders(first: 10, query: $query) {
    edges {
      node {
        id
        legacyResourceId
        name
        fulfillments(first: 25) {` + fulfillmentFields + `
        }
      }
    }
  }
}`
