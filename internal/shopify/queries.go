package shopify

const orderByNameQuery = `
query orderByName($query: String!) {
  orders(first: 1, query: $query) {
    edges {
      node {
        id
        name
        createdAt
        displayFulfillmentStatus
        displayFinancialStatus
        customer {
          firstName
          lastName
        }
        shippingAddress {
          firstName
          lastName
          address1
          city
          provinceCode
          zip
          countryCodeV2
        }
        fulfillments(first: 10) {
          status
          displayStatus
          createdAt
          deliveredAt
          trackingInfo(first: 5) {
            number
          }
        }
      }
    }
  }
}
`

const orderMetafieldQuery = `
query orderMetafield($id: ID!, $namespace: String!, $key: String!) {
  order(id: $id) {
    metafield(namespace: $namespace, key: $key) {
      value
      updatedAt
    }
  }
}
`
